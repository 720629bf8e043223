package txrunner

import (
	"context"
	"database/sql"

	"github.com/samber/oops"

	"github.com/schemagate/migrator/internal/migration"
	"github.com/schemagate/migrator/pkg/errutil"
)

// Processor drives single-level transactions against the run's one
// logical connection. Nesting is not supported: Begin must be followed by
// exactly one Commit or Rollback before the next Begin.
type Processor struct {
	db *sql.DB
}

// NewProcessor wraps an already-open *sql.DB.
func NewProcessor(db *sql.DB) *Processor {
	return &Processor{db: db}
}

// Begin starts a new transaction.
func (p *Processor) Begin(ctx context.Context) (*sql.Tx, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, oops.Code(errutil.CodeMigrationFailed).Wrap(err)
	}
	return tx, nil
}

// Commit commits tx.
func (p *Processor) Commit(tx *sql.Tx) error {
	if err := tx.Commit(); err != nil {
		return oops.Code(errutil.CodeMigrationFailed).Wrap(err)
	}
	return nil
}

// Rollback rolls tx back. A failure here is reported via RollbackFailed
// but must never replace the original migration error in the caller.
func (p *Processor) Rollback(tx *sql.Tx) error {
	if err := tx.Rollback(); err != nil {
		return oops.Code(errutil.CodeRollbackFailed).Wrap(err)
	}
	return nil
}

// Execute submits sqlText as a single batch inside tx. Callers that need
// dialect-specific batch separators split beforehand (see
// dialect.Dialect.SplitStatements) and call Execute once per batch.
func (p *Processor) Execute(ctx context.Context, tx *sql.Tx, sqlText string) error {
	if _, err := tx.ExecContext(ctx, sqlText); err != nil {
		return oops.Code(errutil.CodeMigrationFailed).Wrap(err)
	}
	return nil
}

// ExecuteNative invokes a native migration's apply routine bound to tx.
// The apply-fn must not touch the version-info table; the orchestrator
// records the version once ExecuteNative returns nil (spec.md §9).
func (p *Processor) ExecuteNative(ctx context.Context, tx *sql.Tx, apply migration.ApplyFunc) error {
	if err := apply(ctx, tx); err != nil {
		return oops.Code(errutil.CodeMigrationFailed).Wrap(err)
	}
	return nil
}
