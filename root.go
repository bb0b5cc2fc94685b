package main

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"blog-cms/config"
	"blog-cms/logging"
)

const serviceName = "blog-cms"

// NewRootCmd builds the command tree. Config flags are persistent so every
// subcommand accepts them.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "blog-cms",
		Short:        "Blog API with JWT authentication",
		SilenceUsage: true,
	}

	config.RegisterFlags(cmd.PersistentFlags())

	cmd.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newCreateAdminCmd(),
	)
	return cmd
}

// loadConfig reads configuration and builds the process logger.
func loadConfig(cmd *cobra.Command, w io.Writer) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, nil, err
	}
	log := logging.Setup(serviceName, version, cfg.Log.Format, cfg.Log.Level, w)
	return cfg, log, nil
}
