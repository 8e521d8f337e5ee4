package queue

import (
	"github.com/spf13/cobra"
)

// NewQueueCommand creates the main queue command
func NewQueueCommand(services *Services) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Manage the translation queue",
		Long:  `Add videos to the translation queue, inspect it, and run translations`,
	}

	// Add subcommands
	cmd.AddCommand(NewAddCommand(services))
	cmd.AddCommand(NewListCommand(services))
	cmd.AddCommand(NewCountsCommand(services))
	cmd.AddCommand(NewRemoveCommand(services))
	cmd.AddCommand(NewRequeueCommand(services))
	cmd.AddCommand(NewClearCommand(services))
	cmd.AddCommand(NewProcessCommand(services))
	cmd.AddCommand(NewPauseCommand(services))
	cmd.AddCommand(NewResumeCommand(services))
	cmd.AddCommand(NewStopCommand(services))
	cmd.AddCommand(NewAbortCommand(services))

	return cmd
}
