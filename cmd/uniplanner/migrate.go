package main

import (
	"github.com/spf13/cobra"

	"github.com/guilherme-santos/uniplanner/internal/sqlite"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}

		db, err := sqlite.Open(cfg.DBPath)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := sqlite.Migrate(db); err != nil {
			return err
		}
		log.Info("database is up to date", "path", cfg.DBPath)
		return nil
	},
}
