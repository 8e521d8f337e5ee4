package cmd

import (
	"ytsubs/cmd/queue"
)

func init() {
	// nil services: each invocation builds the real stack from config
	rootCmd.AddCommand(queue.NewQueueCommand(nil))
}
