// Package txrunner is the engine's Transaction/Processor (spec.md §4.6):
// one logical connection per run, single-level transactions, and
// submission of SQL text or native apply-fns against the active
// transaction.
package txrunner

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"

	"github.com/schemagate/migrator/internal/dialect"
	"github.com/schemagate/migrator/pkg/errutil"
)

// Connect opens the run's single logical connection, retrying the initial
// ping with bounded exponential backoff. Migration runners are routinely
// invoked against a database that is still finishing startup in
// container-orchestrated deployments; this retry only smooths that
// handoff and does not orchestrate anything itself (spec.md §1 keeps
// container orchestration out of scope).
func Connect(ctx context.Context, d dialect.Dialect, connectionString string, logger *slog.Logger) (*sql.DB, error) {
	backoff := retry.NewExponential(200 * time.Millisecond)
	backoff = retry.WithMaxRetries(5, backoff)

	var db *sql.DB
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		opened, err := d.Open(ctx, connectionString)
		if err != nil {
			if logger != nil {
				logger.Warn("database connection attempt failed, retrying", "dialect", d.Name(), "error", err)
			}
			return retry.RetryableError(err)
		}
		db = opened
		return nil
	})
	if err != nil {
		return nil, oops.Code(errutil.CodeConnectionFailed).
			With("dialect", d.Name()).
			Wrap(err)
	}
	return db, nil
}
