package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"ytsubs/internal/model"
)

// NewProcessCommand creates the queue process command
func NewProcessCommand(services *Services) *cobra.Command {
	return &cobra.Command{
		Use:   "process",
		Short: "Translate queued videos until the queue drains",
		Long:  `Start translating the oldest pending entry and keep going, one video at a time, until nothing is pending. Progress is printed as windows complete.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(services, func(ctx context.Context, s *Services) error {
				var mu sync.Mutex
				lastLine := ""
				unsubscribe := s.Runner.Subscribe(func(job model.TranslationJob) {
					line := formatProgressLine(job)
					mu.Lock()
					if line != lastLine {
						lastLine = line
						cmd.Println(line)
					}
					mu.Unlock()
				})
				defer unsubscribe()

				if err := s.Coordinator.StartAutoProcess(ctx); err != nil {
					cmd.Printf("Entry failed: %v\n", err)
				}

				// The coordinator advances on its own after each entry;
				// this loop only watches for the drained state
				for {
					select {
					case <-ctx.Done():
						return ctx.Err()
					case <-time.After(200 * time.Millisecond):
					}

					if s.Runner.IsProcessing() {
						continue
					}

					counts, err := s.Store.Counts(ctx)
					if err != nil {
						return fmt.Errorf("failed to count queue entries: %w", err)
					}
					if counts.Pending == 0 {
						cmd.Printf("Queue drained: %d completed, %d failed, %d paused\n",
							counts.Completed, counts.Error, counts.Paused)
						return nil
					}

					// Pending work with a free slot means the advance delay
					// is still running or a start failed; nudge the queue
					if err := s.Coordinator.StartAutoProcess(ctx); err != nil {
						cmd.Printf("Entry failed: %v\n", err)
					}
				}
			})
		},
	}
}

// NewPauseCommand creates the queue pause command
func NewPauseCommand(services *Services) *cobra.Command {
	return &cobra.Command{
		Use:   "pause [ENTRY_ID]",
		Short: "Pause the translating entry, keeping finished windows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entryID := args[0]

			return withServices(services, func(ctx context.Context, s *Services) error {
				if err := s.Coordinator.Pause(ctx, entryID); err != nil {
					return fmt.Errorf("failed to pause entry: %w", err)
				}

				cmd.Printf("Paused entry %s\n", entryID)
				return nil
			})
		},
	}
}

// NewResumeCommand creates the queue resume command
func NewResumeCommand(services *Services) *cobra.Command {
	return &cobra.Command{
		Use:   "resume [ENTRY_ID]",
		Short: "Resume a paused entry, skipping finished windows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entryID := args[0]

			return withServices(services, func(ctx context.Context, s *Services) error {
				if err := s.Coordinator.Resume(ctx, entryID); err != nil {
					return fmt.Errorf("failed to resume entry: %w", err)
				}

				cmd.Printf("Resumed entry %s\n", entryID)
				return nil
			})
		},
	}
}

// NewStopCommand creates the queue stop command
func NewStopCommand(services *Services) *cobra.Command {
	return &cobra.Command{
		Use:   "stop [ENTRY_ID]",
		Short: "Stop the translating entry and return it to pending",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entryID := args[0]

			return withServices(services, func(ctx context.Context, s *Services) error {
				if err := s.Coordinator.Stop(ctx, entryID); err != nil {
					return fmt.Errorf("failed to stop entry: %w", err)
				}

				cmd.Printf("Stopped entry %s\n", entryID)
				return nil
			})
		},
	}
}

// NewAbortCommand creates the queue abort command
func NewAbortCommand(services *Services) *cobra.Command {
	return &cobra.Command{
		Use:   "abort [ENTRY_ID]",
		Short: "Abort an entry, removing it and its saved windows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entryID := args[0]

			return withServices(services, func(ctx context.Context, s *Services) error {
				if err := s.Coordinator.Abort(ctx, entryID); err != nil {
					return fmt.Errorf("failed to abort entry: %w", err)
				}

				cmd.Printf("Aborted entry %s\n", entryID)
				return nil
			})
		},
	}
}
