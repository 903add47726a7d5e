// Package cmd implements the launchpad CLI using cobra.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aspro45/OpenGradient-AI-NFT-Launchpad/internal/config"
	transport "github.com/aspro45/OpenGradient-AI-NFT-Launchpad/internal/transport/http"
)

const logo = "🚀"

// cfg is loaded before every subcommand runs.
var cfg *config.Config

// rootCmd is the base command.
var rootCmd = &cobra.Command{
	Use:           "launchpad",
	Short:         logo + " launchpad, an AI agent for minting and deploying NFT collections",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		loaded, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
		slog.SetDefault(cfg.NewLogger(os.Stderr))
		return nil
	},
}

// Execute runs the root command and exits on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = transport.Version

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(collectionsCmd)
	rootCmd.AddCommand(modelsCmd)
}
