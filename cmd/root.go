package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ytsubs",
	Short: "Queue YouTube videos for AI subtitle translation",
	Long: `ytsubs maintains a queue of YouTube videos and translates them into
subtitles with the Gemini API, one video at a time. Long videos are split
into time windows that are translated concurrently and merged back in
order.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
