package main

import (
	"os"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"blog-cms/config"
)

// newCreateAdminCmd creates an ADMIN account. Registration over HTTP only
// ever yields USER accounts.
func newCreateAdminCmd() *cobra.Command {
	var email, name, password string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create a user with the ADMIN role",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if password == "" {
				password = os.Getenv("ADMIN_PASSWORD")
			}
			if email == "" || password == "" {
				return oops.In("cli").Errorf("--email and --password (or ADMIN_PASSWORD) are required")
			}
			if name == "" {
				name = "Administrator"
			}

			cfg, log, err := loadConfig(cmd, os.Stderr)
			if err != nil {
				return err
			}
			db, err := config.InitDB(cmd.Context(), cfg.Database, log)
			if err != nil {
				return err
			}
			if sqlDB, err := db.DB(); err == nil {
				defer sqlDB.Close()
			}

			app, err := newApplication(cfg, db, log, newRegistry())
			if err != nil {
				return err
			}
			defer app.Close()

			user, err := app.Auth.CreateAdmin(cmd.Context(), email, password, name)
			if err != nil {
				return err
			}
			cmd.Printf("created admin %s (id %d)\n", user.Email, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "admin email address")
	cmd.Flags().StringVar(&name, "name", "", "admin display name")
	cmd.Flags().StringVar(&password, "password", "", "admin password (defaults to $ADMIN_PASSWORD)")
	return cmd
}
