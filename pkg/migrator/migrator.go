// Package migrator is the engine's public entrypoint: a single
// ExecuteMigrations call (spec.md §6.1), loader-agnostic over how native
// migration artifacts are discovered.
package migrator

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/schemagate/migrator/internal/dialect"
	"github.com/schemagate/migrator/internal/errlog"
	"github.com/schemagate/migrator/internal/migration"
	"github.com/schemagate/migrator/internal/nativeloader"
	"github.com/schemagate/migrator/internal/orchestrator"
)

// Re-exported so callers never need to import internal packages to supply
// native migrations or read dialect names.
type (
	// NativeMigration is the contract a compiled migration unit exposes.
	NativeMigration = migration.NativeMigration
	// DBType identifies one of the three supported databases.
	DBType = dialect.Name
)

// Supported database types, matching the CLI's -t/--type values.
const (
	SQLServer  = dialect.SQLServer
	PostgreSQL = dialect.PostgreSQL
	SQLite     = dialect.SQLite
)

// Options configures an Engine beyond the three required invocation
// arguments.
type Options struct {
	Logger *slog.Logger
	// NativeMigrations is the explicit-registration mechanism recommended
	// by spec.md §9: a host process hands the engine its compiled
	// migrations directly instead of relying on runtime plugin discovery.
	NativeMigrations []NativeMigration
	// IgnorePatterns excludes matching file names from directory scanning
	// before the SQL Task Parser sees them. The on-disk plugin loader
	// lists "*.so" files itself and does not apply these patterns.
	IgnorePatterns []string
	// Registerer receives the engine's Prometheus metrics. Defaults to
	// prometheus.DefaultRegisterer.
	Registerer prometheus.Registerer
}

// Engine is a configured migration engine ready to run against any number
// of migrations directories.
type Engine struct {
	orch *orchestrator.Orchestrator
}

// New builds an Engine. Passing a zero Options loads native migrations
// only via on-disk plugin discovery (spec.md §6.2) and logs to
// slog.Default().
func New(opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	registerer := opts.Registerer
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	var loader nativeloader.Loader
	if len(opts.NativeMigrations) > 0 {
		loader = nativeloader.NewRegistryLoader(logger, opts.NativeMigrations...)
	} else {
		loader = nativeloader.NewPluginLoader(logger)
	}

	orch := orchestrator.New(
		dialect.NewRegistry(),
		loader,
		logger,
		errlog.New(logger),
		orchestrator.NewMetrics(registerer),
	)
	return &Engine{orch: orch}
}

// ExecuteMigrations advances the target database to the latest declared
// state, applying every previously-unapplied migration exactly once in
// ascending version order (spec.md §1, §4.7).
func (e *Engine) ExecuteMigrations(ctx context.Context, dbType DBType, connectionString, migrationsPath string) error {
	return e.orch.ExecuteMigrations(ctx, orchestrator.Config{
		DBType:           dbType,
		ConnectionString: connectionString,
		MigrationsPath:   migrationsPath,
	})
}

// ExecuteMigrationsDryRun logs every job discovered in migrationsPath
// without connecting to the database. The version table is not read, so
// already-applied versions are reported alongside pending ones.
func (e *Engine) ExecuteMigrationsDryRun(ctx context.Context, dbType DBType, connectionString, migrationsPath string) error {
	return e.orch.ExecuteMigrations(ctx, orchestrator.Config{
		DBType:           dbType,
		ConnectionString: connectionString,
		MigrationsPath:   migrationsPath,
		DryRun:           true,
	})
}

// ExecuteMigrations is the package-level convenience form of spec.md
// §6.1's entrypoint, for callers that don't need to customize Options.
func ExecuteMigrations(ctx context.Context, dbType DBType, connectionString, migrationsPath string) error {
	return New(Options{}).ExecuteMigrations(ctx, dbType, connectionString, migrationsPath)
}
