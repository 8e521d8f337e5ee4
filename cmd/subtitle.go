package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"ytsubs/internal/config"
	subtitleRepo "ytsubs/internal/repository/subtitle"
	"ytsubs/internal/service/youtube"
)

// subtitleCmd represents the subtitle command
var subtitleCmd = &cobra.Command{
	Use:   "subtitle",
	Short: "Access stored subtitle translations",
	Long:  `Show, list, and delete subtitles produced by finished translations.`,
}

// withSubtitleRepo builds the subtitle repository from config for one command run
func withSubtitleRepo(fn func(ctx context.Context, repo subtitleRepo.Repository, cfg *config.Config) error) error {
	ctx := context.Background()

	cfg, err := config.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	dbPool, err := config.NewDatabasePool(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer dbPool.Close()

	return fn(ctx, subtitleRepo.NewRepository(dbPool), cfg)
}

// resolveVideoID accepts either a video URL or a bare video ID
func resolveVideoID(arg string) string {
	if id := youtube.ExtractVideoID(arg); id != "" {
		return id
	}
	return arg
}

// subtitleShowCmd represents the subtitle show command
var subtitleShowCmd = &cobra.Command{
	Use:   "show [VIDEO_URL_OR_ID]",
	Short: "Print the stored subtitle for a video",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		videoID := resolveVideoID(args[0])

		return withSubtitleRepo(func(ctx context.Context, repo subtitleRepo.Repository, cfg *config.Config) error {
			sub, err := repo.Get(ctx, videoID, cfg.Translation.ConfigName)
			if err != nil {
				return fmt.Errorf("failed to load subtitle: %w", err)
			}

			cmd.Println(sub.Content)
			return nil
		})
	},
}

// subtitleListCmd represents the subtitle list command
var subtitleListCmd = &cobra.Command{
	Use:   "list",
	Short: "List videos with a stored subtitle",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSubtitleRepo(func(ctx context.Context, repo subtitleRepo.Repository, cfg *config.Config) error {
			videoIDs, err := repo.ListVideoIDs(ctx, cfg.Translation.ConfigName)
			if err != nil {
				return fmt.Errorf("failed to list subtitles: %w", err)
			}

			if len(videoIDs) == 0 {
				cmd.Println("No subtitles stored")
				return nil
			}

			for _, id := range videoIDs {
				cmd.Println(id)
			}
			return nil
		})
	},
}

// subtitleDeleteCmd represents the subtitle delete command
var subtitleDeleteCmd = &cobra.Command{
	Use:   "delete [VIDEO_URL_OR_ID]",
	Short: "Delete the stored subtitle for a video",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		videoID := resolveVideoID(args[0])

		return withSubtitleRepo(func(ctx context.Context, repo subtitleRepo.Repository, cfg *config.Config) error {
			if err := repo.Delete(ctx, videoID, cfg.Translation.ConfigName); err != nil {
				return fmt.Errorf("failed to delete subtitle: %w", err)
			}

			cmd.Printf("Deleted subtitle for %s\n", videoID)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(subtitleCmd)
	subtitleCmd.AddCommand(subtitleShowCmd)
	subtitleCmd.AddCommand(subtitleListCmd)
	subtitleCmd.AddCommand(subtitleDeleteCmd)
}
