package queue

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	queueSvc "ytsubs/internal/service/queue"
)

// NewAddCommand creates the queue add command
func NewAddCommand(services *Services) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add [VIDEO_URL]",
		Short: "Add a video to the translation queue",
		Long:  `Add a YouTube video to the translation queue. The same video is never queued twice, regardless of the URL shape used.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			videoURL := args[0]
			title, _ := cmd.Flags().GetString("title")
			duration, _ := cmd.Flags().GetInt("duration")

			return withServices(services, func(ctx context.Context, s *Services) error {
				entry, existed, err := s.Store.Add(ctx, queueSvc.AddRequest{
					VideoURL:        videoURL,
					Title:           title,
					DurationSeconds: duration,
				})
				if err != nil {
					return fmt.Errorf("failed to add video to queue: %w", err)
				}

				if existed {
					cmd.Printf("Video %s is already queued (status: %s)\n", entry.VideoID, entry.Status)
					return nil
				}

				cmd.Printf("Added %s to the queue\n", entry.VideoID)
				cmd.Println(formatEntryLine(entry))
				return nil
			})
		},
	}

	cmd.Flags().String("title", "", "Video title (fetched automatically when omitted)")
	cmd.Flags().Int("duration", 0, "Video duration in seconds (fetched automatically when omitted)")

	return cmd
}
