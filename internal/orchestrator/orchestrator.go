// Package orchestrator implements the core algorithm of spec.md §4.7: it
// drives ordered application of migration jobs, enforces skip/warn
// policies, and halts the run on the first failure.
package orchestrator

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/schemagate/migrator/internal/dialect"
	"github.com/schemagate/migrator/internal/errlog"
	"github.com/schemagate/migrator/internal/jobfactory"
	"github.com/schemagate/migrator/internal/migration"
	"github.com/schemagate/migrator/internal/nativeloader"
	"github.com/schemagate/migrator/internal/scanner"
	"github.com/schemagate/migrator/internal/sqltask"
	"github.com/schemagate/migrator/internal/txrunner"
	"github.com/schemagate/migrator/internal/versionstore"
	"github.com/schemagate/migrator/pkg/errutil"
)

var tracer = otel.Tracer("github.com/schemagate/migrator/internal/orchestrator")

// Config bundles a single run's invocation surface (spec.md §6.1).
type Config struct {
	DBType           dialect.Name
	ConnectionString string
	MigrationsPath   string
	IgnorePatterns   []string
	// DryRun logs every discovered job without connecting to the
	// database (SPEC_FULL.md §12). The version table is not read, so
	// already-applied versions are listed as well.
	DryRun bool
}

// Orchestrator wires together every collaborator named in spec.md §2's
// data-flow diagram and exposes the single ExecuteMigrations entrypoint.
type Orchestrator struct {
	registry   *dialect.Registry
	native     nativeloader.Loader
	logger     *slog.Logger
	errSink    *errlog.Sink
	metrics    *Metrics
}

// New builds an Orchestrator. nativeLoader may be nil, in which case no
// native migrations are ever discovered (a SQL-only deployment).
func New(registry *dialect.Registry, nativeLoader nativeloader.Loader, logger *slog.Logger, sink *errlog.Sink, metrics *Metrics) *Orchestrator {
	if nativeLoader == nil {
		nativeLoader = nativeloader.NewRegistryLoader(logger)
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &Orchestrator{registry: registry, native: nativeLoader, logger: logger, errSink: sink, metrics: metrics}
}

// ExecuteMigrations is the engine's sole invocation surface (spec.md
// §6.1): given a dialect, a connection string, and a migrations
// directory, it advances the database to the latest declared state.
func (o *Orchestrator) ExecuteMigrations(ctx context.Context, cfg Config) error {
	runID := ulid.Make()
	logger := o.logger.With("run_id", runID.String())

	d, ok := o.registry.Resolve(cfg.DBType)
	if !ok {
		return oops.Code(errutil.CodeUnsupportedDialect).
			With("type", cfg.DBType).
			Errorf("unsupported database type: %s", cfg.DBType)
	}

	sc, err := scanner.New(logger, cfg.IgnorePatterns...)
	if err != nil {
		return err
	}

	// Step 1: validate migrationsPath exists.
	entries, err := sc.Scan(cfg.MigrationsPath)
	if err != nil {
		return err
	}

	// Step 2: scan for SQL and native units, build the ordered job list.
	sqlUnits, err := sqltask.ParseAll(entries)
	if err != nil {
		return err
	}
	nativeUnits, err := o.native.Load(cfg.MigrationsPath)
	if err != nil {
		return oops.Code(errutil.CodeLoaderFailure).Wrap(err)
	}

	jobs, err := jobfactory.Create(nativeUnits, sqlUnits)
	if err != nil {
		return err
	}

	// Step 3: empty job list is a no-op success.
	if len(jobs) == 0 {
		logger.Warn("no migrations found in directory", "path", cfg.MigrationsPath)
		return nil
	}

	if cfg.DryRun {
		for _, j := range jobs {
			logger.Info("dry run: would apply", "version", j.Version, "job", jobfactory.Describe(j))
		}
		return nil
	}

	db, err := txrunner.Connect(ctx, d, cfg.ConnectionString, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	if warn := checkServerVersionFloor(ctx, d, db); warn != nil {
		logger.Warn("server version below dialect's validated floor", "error", warn)
	}

	store := versionstore.New(db, d)

	// Step 4: ensure the version-info table, then load the Applied Set.
	if err := store.Ensure(ctx); err != nil {
		return err
	}
	if _, err := store.Load(ctx); err != nil {
		return err
	}

	proc := txrunner.NewProcessor(db)

	// Step 6: iterate jobs ascending by version.
	applied := 0
	for _, job := range jobs {
		alreadyApplied := store.Has(job.Version)
		if err := o.applyJob(ctx, d, proc, store, job, runID, logger); err != nil {
			return err
		}
		if !alreadyApplied {
			applied++
		}
	}

	// Step 7.
	logger.Info("migration run completed successfully", "jobs_applied", applied)
	return nil
}

func (o *Orchestrator) applyJob(ctx context.Context, d dialect.Dialect, proc *txrunner.Processor, store *versionstore.Store, job migration.Unit, runID ulid.ULID, logger *slog.Logger) error {
	ctx, span := tracer.Start(ctx, "orchestrator.applyJob", trace.WithAttributes(
		attribute.Int64("migration.version", int64(job.Version)),
		attribute.String("migration.kind", job.Kind.String()),
	))
	defer span.End()

	// Step 6a: skip already-applied jobs.
	if store.Has(job.Version) {
		logger.Info("Skipping already applied migration (from previous run)", "version", job.Version)
		return nil
	}

	// Step 6b: warn (never fail) on out-of-order application.
	if maxSoFar := store.MaxApplied(); maxSoFar > 0 && job.Version < maxSoFar {
		logger.Warn("Applying out-of-order migration",
			"version", job.Version, "max_applied", maxSoFar,
			"message", "Version is being applied after a higher version has already been applied.")
	}

	start := time.Now()
	tx, err := proc.Begin(ctx)
	if err != nil {
		return err
	}

	if applyErr := o.runApply(ctx, d, proc, tx, job); applyErr != nil {
		o.metrics.Failed.Inc()
		if rbErr := proc.Rollback(tx); rbErr != nil {
			errutil.LogError(logger, "rollback failed after migration failure", rbErr)
		}
		message := describeFailure(job)
		logger.Error(message, "version", job.Version, "error", applyErr)
		o.errSink.Append(runID, message+": "+applyErr.Error())
		span.RecordError(applyErr)
		return oops.Code(errutil.CodeMigrationFailed).
			With("version", job.Version).
			With("kind", job.Kind.String()).
			Wrap(applyErr)
	}

	// The orchestrator always records the version itself, never the
	// native apply-fn (spec.md §9's recommended resolution of the Open
	// Question): a single place writes applied state regardless of kind.
	if err := store.Record(ctx, tx, job.Version, job.Description); err != nil {
		o.metrics.Failed.Inc()
		if rbErr := proc.Rollback(tx); rbErr != nil {
			errutil.LogError(logger, "rollback failed after version-record failure", rbErr)
		}
		return err
	}

	if err := proc.Commit(tx); err != nil {
		return err
	}

	o.metrics.Applied.Inc()
	o.metrics.Duration.Observe(time.Since(start).Seconds())
	return nil
}

func (o *Orchestrator) runApply(ctx context.Context, d dialect.Dialect, proc *txrunner.Processor, tx *sql.Tx, job migration.Unit) error {
	switch job.Kind {
	case migration.KindNative:
		return proc.ExecuteNative(ctx, tx, job.Native.Apply)
	case migration.KindSQL:
		text, err := readSQLFile(job.SQLPath)
		if err != nil {
			return err
		}
		for _, batch := range d.SplitStatements(text) {
			if err := proc.Execute(ctx, tx, batch); err != nil {
				return err
			}
		}
		return nil
	default:
		return oops.Code(errutil.CodeMigrationFailed).Errorf("unknown migration kind for version %d", job.Version)
	}
}

func describeFailure(job migration.Unit) string {
	source := job.Description
	if job.Kind == migration.KindSQL {
		source = job.SQLFileName
	}
	return "CRITICAL ERROR applying " + job.Kind.String() + " migration " + strconv.FormatUint(job.Version, 10) + " (" + source + "). Halting execution."
}

func readSQLFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", oops.Code(errutil.CodeMigrationFailed).With("path", path).Wrap(err)
	}
	return string(data), nil
}

// checkServerVersionFloor is a best-effort, never-fatal advisory: a
// version string that fails to parse, or a query the target server
// rejects, is swallowed rather than surfaced, since spec.md never makes
// this check a precondition for applying migrations.
func checkServerVersionFloor(ctx context.Context, d dialect.Dialect, db *sql.DB) error {
	constraint := d.MinServerVersion()
	if constraint == nil {
		return nil
	}

	var raw string
	if err := db.QueryRowContext(ctx, d.ServerVersionQuery()).Scan(&raw); err != nil {
		return nil
	}

	version, err := dialect.ExtractVersion(raw)
	if err != nil {
		return nil
	}

	if !constraint.Check(version) {
		return oops.With("dialect", d.Name()).
			Errorf("server version %s does not satisfy validated floor %s", version, constraint)
	}
	return nil
}
