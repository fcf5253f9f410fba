package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iliyamo/community-amenities/internal/config"
	"github.com/iliyamo/community-amenities/internal/migrate"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.LoadDatabase()
			log := cliLogger(cfg)
			db, err := openDB(cfg)
			if err != nil {
				return fmt.Errorf("connect: %w", err)
			}
			defer db.Close()

			applied, err := migrate.Up(cmd.Context(), db)
			if err != nil {
				return err
			}
			for _, name := range applied {
				log.Info("migration applied", "file", name)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d migration(s) applied\n", len(applied))
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List embedded migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			files, err := migrate.Files()
			if err != nil {
				return err
			}
			for _, f := range files {
				fmt.Fprintln(cmd.OutOrStdout(), f)
			}
			return nil
		},
	})
	return cmd
}
