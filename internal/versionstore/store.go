// Package versionstore is the engine's bookkeeping of applied versions
// (spec.md §4.5): the dedicated VersionInfo table, the in-memory Applied
// Set it seeds, and the record() duplicate-key backstop.
package versionstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"

	"github.com/schemagate/migrator/internal/dialect"
	"github.com/schemagate/migrator/pkg/errutil"
)

// Store reads and writes the version-info table and tracks which versions
// have been recorded during the current run.
type Store struct {
	db      *sql.DB
	dialect dialect.Dialect

	// applied is the Applied Set: the union of versions loaded at the
	// start of the run and versions recorded during it.
	applied map[uint64]struct{}
}

// New builds a Store bound to db and dialect d. Call Ensure then Load
// before the orchestrator starts iterating jobs.
func New(db *sql.DB, d dialect.Dialect) *Store {
	return &Store{db: db, dialect: d, applied: make(map[uint64]struct{})}
}

// Ensure creates the version-info table if it doesn't already exist.
func (s *Store) Ensure(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, s.dialect.VersionTableDDL()); err != nil {
		return oops.Code(errutil.CodeVersionStoreError).
			With("dialect", s.dialect.Name()).
			Errorf("failed to ensure version-info table: %v", err)
	}
	return nil
}

// Load reads every row from the version-info table into the Applied Set
// and returns a defensive copy of the versions found.
func (s *Store) Load(ctx context.Context) ([]uint64, error) {
	query := fmt.Sprintf("SELECT %s FROM %s", s.quotedColumn("Version"), s.tableRef())
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, oops.Code(errutil.CodeVersionStoreError).Wrap(err)
	}
	defer rows.Close()

	var versions []uint64
	for rows.Next() {
		var v uint64
		if err := rows.Scan(&v); err != nil {
			return nil, oops.Code(errutil.CodeVersionStoreError).Wrap(err)
		}
		s.applied[v] = struct{}{}
		versions = append(versions, v)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code(errutil.CodeVersionStoreError).Wrap(err)
	}
	return versions, nil
}

// Has reports whether version is in the Applied Set (loaded at run start
// or recorded during this run).
func (s *Store) Has(version uint64) bool {
	_, ok := s.applied[version]
	return ok
}

// MaxApplied returns the highest version in the Applied Set, or 0 if empty.
func (s *Store) MaxApplied() uint64 {
	var max uint64
	for v := range s.applied {
		if v > max {
			max = v
		}
	}
	return max
}

// Record inserts a row for version within tx and marks it applied. Record
// is the correctness backstop for spec.md §4.5: if the Applied Set gate in
// the orchestrator somehow let a duplicate through, the table's unique
// index on Version causes this insert to fail, and that failure is
// surfaced as a VersionStoreError rather than silently succeeding twice.
func (s *Store) Record(ctx context.Context, tx *sql.Tx, version uint64, description string) error {
	query := fmt.Sprintf(
		"INSERT INTO %s (%s, %s, %s) VALUES (%s, %s, %s)",
		s.tableRef(),
		s.quotedColumn("Version"), s.quotedColumn("AppliedOn"), s.quotedColumn("Description"),
		s.placeholder(1), s.placeholder(2), s.placeholder(3),
	)
	if _, err := tx.ExecContext(ctx, query, version, time.Now().UTC(), description); err != nil {
		if isUniqueViolation(err) {
			return oops.Code(errutil.CodeVersionStoreError).
				With("version", version).
				Errorf("version %d already recorded: %v", version, err)
		}
		return oops.Code(errutil.CodeVersionStoreError).With("version", version).Wrap(err)
	}
	s.applied[version] = struct{}{}
	return nil
}

func (s *Store) tableRef() string {
	schema := s.dialect.DefaultSchema()
	table := s.dialect.QuoteIdentifier("VersionInfo")
	if schema == "" {
		return table
	}
	return schema + "." + table
}

func (s *Store) quotedColumn(name string) string {
	return s.dialect.QuoteIdentifier(name)
}

// placeholder renders the dialect-appropriate bind parameter. PostgreSQL
// (via pgx's database/sql adapter) expects $N; SQL Server (go-mssqldb's
// "sqlserver" driver) expects @pN; SQLite accepts the driver-default "?".
func (s *Store) placeholder(n int) string {
	switch s.dialect.Name() {
	case dialect.PostgreSQL:
		return fmt.Sprintf("$%d", n)
	case dialect.SQLServer:
		return fmt.Sprintf("@p%d", n)
	}
	return "?"
}

// isUniqueViolation classifies a PostgreSQL unique-constraint error, the
// same check cmd/holomush/seed.go makes when re-seeding a row that
// already exists.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.UniqueViolation
	}
	return false
}
