package main

import (
	"fmt"
	"os"

	"github.com/civicconnect/civicconnect-be/config"
	"github.com/civicconnect/civicconnect-be/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:   "civicconnect",
	Short: "CivicConnect API server",
	Long: `CivicConnect is the REST backend of a civic social network: profiles,
connections, posts, comments, reactions, government schemes, jobs, events,
direct messages, notifications, reports and announcements.

Configuration is read from the environment and an optional .env file.`,
	SilenceUsage: true,
}

func main() {
	rootCmd.AddCommand(serveCmd, migrateCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads the configuration and initialises the global logger.
func setup() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	if err := logger.Init(cfg.LogLevel, cfg.IsProduction()); err != nil {
		return nil, fmt.Errorf("initialising logger: %w", err)
	}
	logger.Get().Info("configuration loaded", cfg.LogFields()...)
	return cfg, nil
}

func logFatal(msg string, err error) {
	logger.Get().Fatal(msg, zap.Error(err))
}
