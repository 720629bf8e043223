package main

import (
	"context"
	"log/slog"
	"sort"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/schemagate/migrator/internal/config"
	"github.com/schemagate/migrator/internal/dialect"
	"github.com/schemagate/migrator/internal/jobfactory"
	"github.com/schemagate/migrator/internal/logging"
	"github.com/schemagate/migrator/internal/nativeloader"
	"github.com/schemagate/migrator/internal/scanner"
	"github.com/schemagate/migrator/internal/sqltask"
	"github.com/schemagate/migrator/internal/txrunner"
	"github.com/schemagate/migrator/internal/versionstore"
	"github.com/schemagate/migrator/pkg/errutil"
)

// newStatusCmd builds the read-only "status" subcommand (SPEC_FULL.md
// §12): it lists applied vs. pending jobs without applying anything.
func newStatusCmd() *cobra.Command {
	var (
		dbType     string
		connection string
		path       string
		ignore     []string
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "List applied and pending migrations without applying them",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd.Flags(), configFile)
			if err != nil {
				return classifyConfigError(err)
			}

			logger := logging.Setup("schemagate", version, "text", slog.LevelInfo, nil)
			return runStatus(cmd, logger, dialect.Name(cfg.Type), cfg.Connection, cfg.Path, ignore)
		},
	}

	cmd.Flags().StringVarP(&dbType, "type", "t", "", "database type: SqlServer, PostgreSql, or SQLite (required)")
	cmd.Flags().StringVarP(&connection, "connection", "c", "", "database connection string (required)")
	cmd.Flags().StringVarP(&path, "path", "p", "", "migrations directory (required)")
	cmd.Flags().StringSliceVar(&ignore, "ignore", nil, "glob pattern(s) of migration directory entries to skip")

	return cmd
}

func runStatus(cmd *cobra.Command, logger *slog.Logger, dbType dialect.Name, connection, path string, ignore []string) error {
	registry := dialect.NewRegistry()
	d, ok := registry.Resolve(dbType)
	if !ok {
		return oops.Code(errutil.CodeUnsupportedDialect).
			With("type", dbType).
			Errorf("unsupported database type: %s", dbType)
	}

	sc, err := scanner.New(logger, ignore...)
	if err != nil {
		return err
	}
	entries, err := sc.Scan(path)
	if err != nil {
		return err
	}

	sqlUnits, err := sqltask.ParseAll(entries)
	if err != nil {
		return err
	}
	nativeUnits, err := nativeloader.NewPluginLoader(logger).Load(path)
	if err != nil {
		return err
	}
	jobs, err := jobfactory.Create(nativeUnits, sqlUnits)
	if err != nil {
		return err
	}

	ctx := context.Background()
	db, err := txrunner.Connect(ctx, d, connection, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	store := versionstore.New(db, d)
	if err := store.Ensure(ctx); err != nil {
		return err
	}
	applied, err := store.Load(ctx)
	if err != nil {
		return err
	}
	appliedSet := make(map[uint64]struct{}, len(applied))
	for _, v := range applied {
		appliedSet[v] = struct{}{}
	}

	var pending []uint64
	for _, job := range jobs {
		if _, ok := appliedSet[job.Version]; !ok {
			pending = append(pending, job.Version)
		}
	}
	sort.Slice(applied, func(i, j int) bool { return applied[i] < applied[j] })

	cmd.Printf("Applied (%d):\n", len(applied))
	for _, v := range applied {
		cmd.Printf("  %d\n", v)
	}
	cmd.Printf("Pending (%d):\n", len(pending))
	for _, v := range pending {
		cmd.Printf("  %d\n", v)
	}
	return nil
}
