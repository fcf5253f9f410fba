package main

import (
	"database/sql"

	"github.com/spf13/cobra"

	"github.com/iliyamo/community-amenities/internal/config"
	"github.com/iliyamo/community-amenities/internal/database"
	"github.com/iliyamo/community-amenities/internal/logger"
)

// openDB is replaced in tests.
var openDB = func(cfg config.Config) (*sql.DB, error) {
	return database.OpenForMigrations(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "communityctl",
		Short:         "Administration for the community amenities service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newMigrateCmd())
	root.AddCommand(newUserCmd())
	return root
}

func cliLogger(cfg config.Config) *logger.Logger {
	return logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Service: "communityctl"})
}
