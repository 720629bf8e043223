package main

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/schemagate/migrator/internal/config"
	"github.com/schemagate/migrator/internal/logging"
	"github.com/schemagate/migrator/pkg/migrator"
)

func newMigrateCmd() *cobra.Command {
	var (
		dbType     string
		connection string
		path       string
		verbose    bool
		dryRun     bool
		ignore     []string
	)

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd.Flags(), configFile)
			if err != nil {
				return classifyConfigError(err)
			}

			threshold := slog.LevelInfo
			if cfg.Verbose {
				threshold = logging.LevelTrace
			}
			logger := logging.Setup("schemagate", version, "json", threshold, nil)

			engine := migrator.New(migrator.Options{
				Logger:         logger,
				IgnorePatterns: ignore,
			})

			ctx := context.Background()
			if dryRun {
				return engine.ExecuteMigrationsDryRun(ctx, migrator.DBType(cfg.Type), cfg.Connection, cfg.Path)
			}
			return engine.ExecuteMigrations(ctx, migrator.DBType(cfg.Type), cfg.Connection, cfg.Path)
		},
	}

	cmd.Flags().StringVarP(&dbType, "type", "t", "", "database type: SqlServer, PostgreSql, or SQLite (required)")
	cmd.Flags().StringVarP(&connection, "connection", "c", "", "database connection string (required)")
	cmd.Flags().StringVarP(&path, "path", "p", "", "migrations directory (required)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "raise the log threshold to Trace")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "list discovered jobs without connecting or applying them")
	cmd.Flags().StringSliceVar(&ignore, "ignore", nil, "glob pattern(s) of migration directory entries to skip")

	return cmd
}
