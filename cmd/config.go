package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"ytsubs/internal/config"
	"ytsubs/internal/service/keypool"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration settings",
	Long:  `Manage configuration settings for ytsubs.`,
}

// configInitCmd represents the config init command
var configInitCmd = &cobra.Command{
	Use:   "init [DATABASE_URL]",
	Short: "Initialize configuration file",
	Long:  `Create a new configuration file with database connection settings.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var databaseURL string
		if len(args) > 0 {
			databaseURL = args[0]
		}

		if err := config.InitConfig(databaseURL); err != nil {
			return err
		}

		configPath, err := config.GetConfigPath()
		if err != nil {
			return err
		}

		fmt.Printf("Created configuration file: %s\n", configPath)
		fmt.Println("Please edit the database_url and api_keys in this file.")

		return nil
	},
}

// configShowCmd represents the config show command
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the current configuration file path and settings. API keys are masked.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, err := config.GetConfigPath()
		if err != nil {
			return err
		}

		fmt.Printf("Configuration file: %s\n\n", configPath)

		// Load and display current config
		cfg, err := config.NewConfig()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		fmt.Printf("DATABASE_URL: %s\n", cfg.DatabaseURL)
		fmt.Printf("Page size: %d\n", cfg.PageSize)

		keys := keypool.NewPool(cfg.APIKeys)
		fmt.Printf("API keys (%d):\n", keys.Size())
		for i := 0; i < keys.Size(); i++ {
			fmt.Printf("  %d: %s\n", i+1, keys.Masked(i))
		}

		fmt.Println("Translation:")
		fmt.Printf("  config name:            %s\n", cfg.Translation.ConfigName)
		fmt.Printf("  target language:        %s\n", cfg.Translation.TargetLanguage)
		fmt.Printf("  max window seconds:     %d\n", cfg.Translation.MaxWindowSeconds)
		fmt.Printf("  tolerance seconds:      %d\n", cfg.Translation.ToleranceSeconds)
		fmt.Printf("  max concurrent windows: %d\n", cfg.Translation.MaxConcurrentWindows)
		fmt.Printf("  streaming enabled:      %t\n", cfg.Translation.StreamingEnabled)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}
