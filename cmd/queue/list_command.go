package queue

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"ytsubs/internal/model"
)

// NewListCommand creates the queue list command
func NewListCommand(services *Services) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List queue entries by status",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, _ := cmd.Flags().GetString("status")
			page, _ := cmd.Flags().GetInt("page")

			return withServices(services, func(ctx context.Context, s *Services) error {
				entries, total, totalPages, err := s.Store.ItemsByStatus(ctx, model.QueueStatus(status), page)
				if err != nil {
					return fmt.Errorf("failed to list queue entries: %w", err)
				}

				if total == 0 {
					cmd.Printf("No %s entries in the queue\n", status)
					return nil
				}

				cmd.Printf("%s entries (page %d of %d, %d total):\n\n", status, page, totalPages, total)
				for _, entry := range entries {
					cmd.Println(formatEntryLine(entry))
				}
				return nil
			})
		},
	}

	cmd.Flags().String("status", string(model.QueueStatusPending), "Queue status to list (pending, translating, paused, completed, error)")
	cmd.Flags().Int("page", 1, "Page number")

	return cmd
}

// NewCountsCommand creates the queue counts command
func NewCountsCommand(services *Services) *cobra.Command {
	return &cobra.Command{
		Use:   "counts",
		Short: "Show the number of entries per status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(services, func(ctx context.Context, s *Services) error {
				counts, err := s.Store.Counts(ctx)
				if err != nil {
					return fmt.Errorf("failed to count queue entries: %w", err)
				}

				cmd.Print(formatCounts(counts))
				return nil
			})
		},
	}
}
