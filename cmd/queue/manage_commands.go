package queue

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"ytsubs/internal/model"
)

// NewRemoveCommand creates the queue remove command
func NewRemoveCommand(services *Services) *cobra.Command {
	return &cobra.Command{
		Use:   "remove [ENTRY_ID]",
		Short: "Remove an entry from the queue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entryID := args[0]

			return withServices(services, func(ctx context.Context, s *Services) error {
				if err := s.Store.Remove(ctx, entryID); err != nil {
					return fmt.Errorf("failed to remove queue entry: %w", err)
				}

				cmd.Printf("Removed entry %s\n", entryID)
				return nil
			})
		},
	}
}

// NewRequeueCommand creates the queue requeue command
func NewRequeueCommand(services *Services) *cobra.Command {
	return &cobra.Command{
		Use:   "requeue [ENTRY_ID]",
		Short: "Move a failed, paused, or completed entry back to pending",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entryID := args[0]

			return withServices(services, func(ctx context.Context, s *Services) error {
				entry, err := s.Store.MoveToPending(ctx, entryID)
				if err != nil {
					return fmt.Errorf("failed to requeue entry: %w", err)
				}

				cmd.Printf("Requeued %s\n", entry.VideoID)
				return nil
			})
		},
	}
}

// NewClearCommand creates the queue clear command
func NewClearCommand(services *Services) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear queue entries",
		Long:  `Delete every pending and error entry, or every entry of one status with --status`,
		RunE: func(cmd *cobra.Command, args []string) error {
			status, _ := cmd.Flags().GetString("status")

			return withServices(services, func(ctx context.Context, s *Services) error {
				var deleted int64
				var err error
				if status == "" {
					deleted, err = s.Store.ClearBacklog(ctx)
				} else {
					deleted, err = s.Store.ClearByStatus(ctx, model.QueueStatus(status))
				}
				if err != nil {
					return fmt.Errorf("failed to clear queue: %w", err)
				}

				cmd.Printf("Deleted %d entries\n", deleted)
				return nil
			})
		},
	}

	cmd.Flags().String("status", "", "Only clear entries with this status (default: pending and error together)")

	return cmd
}
