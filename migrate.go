package main

import (
	"os"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"blog-cms/config"
	"blog-cms/migration"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, log, err := loadConfig(cmd, os.Stderr)
				if err != nil {
					return err
				}
				// InitDB migrates as part of opening the database.
				db, err := config.InitDB(cmd.Context(), cfg.Database, log)
				if err != nil {
					return err
				}
				if sqlDB, err := db.DB(); err == nil {
					_ = sqlDB.Close()
				}
				cmd.Println("migrations applied")
				return nil
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back every migration (PostgreSQL only)",
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, _, err := loadConfig(cmd, os.Stderr)
				if err != nil {
					return err
				}
				if cfg.Database.Driver != config.DriverPostgres {
					return oops.In("migration").Errorf("migrate down is only supported on postgres")
				}
				if err := migration.Down(cfg.Database.DSN); err != nil {
					return err
				}
				cmd.Println("migrations rolled back")
				return nil
			},
		},
	)
	return cmd
}
