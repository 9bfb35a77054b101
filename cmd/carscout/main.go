package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/malonaz/carscout/cli/chat"
	"github.com/malonaz/carscout/cli/health"
	"github.com/malonaz/carscout/cli/search"
	"github.com/malonaz/carscout/internal/configuration"
	"github.com/malonaz/carscout/webserver"
)

var rootCmd = &cobra.Command{
	Use:          "carscout",
	Short:        "Search car listings and chat with a car buying assistant",
	Version:      "1.0",
	SilenceUsage: true,
}

func main() {
	// Filled in before any subcommand runs.
	config := &configuration.Config{}
	var configPath string
	rootCmd.PersistentFlags().StringVar(&configPath, "config", configuration.DefaultPath, "Path to the configuration file")
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		parsed, err := configuration.Parse(configPath)
		if err != nil {
			return err
		}
		*config = *parsed
		return nil
	}

	rootCmd.AddCommand(chat.NewCmd(config))
	rootCmd.AddCommand(search.NewCmd(config))
	rootCmd.AddCommand(webserver.NewServeCmd(config))
	rootCmd.AddCommand(health.NewCmd(config))
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
