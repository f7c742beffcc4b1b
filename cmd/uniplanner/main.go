package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/guilherme-santos/uniplanner/internal/config"
	"github.com/guilherme-santos/uniplanner/internal/logger"
)

var (
	envFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "uniplanner",
	Short: "University planner backend mirroring events to Google Calendar",
	Long: `uniplanner keeps subjects and events (classes, exams and study sessions)
in a local SQLite database and mirrors new events to the Google Calendar of
the signed-in user.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "config", "", "env file to load (default: .env in the working directory, if any)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug messages")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, nil, err
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	log, err := logger.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, nil, fmt.Errorf("config: %w", err)
	}
	slog.SetDefault(log)
	return cfg, log, nil
}
