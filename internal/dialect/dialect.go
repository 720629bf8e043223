// Package dialect implements the per-database quoting, schema defaults,
// and version-table DDL of spec.md §4.9 and §6.3.
package dialect

import (
	"context"
	"database/sql"

	"github.com/Masterminds/semver/v3"
)

// Name identifies one of the three supported databases.
type Name string

// Supported dialect names, matching the CLI's -t/--type values exactly.
const (
	SQLServer  Name = "SqlServer"
	PostgreSQL Name = "PostgreSql"
	SQLite     Name = "SQLite"
)

// Dialect captures everything the engine needs to know about a target
// database that isn't part of the core orchestration algorithm.
type Dialect interface {
	// Name returns the dialect's canonical identifier.
	Name() Name
	// DriverName is the database/sql driver name to pass to sql.Open.
	// PostgreSQL goes through pgx's database/sql adapter ("pgx") like the
	// other dialects; Open below is the uniform entry point.
	DriverName() string
	// DefaultSchema returns the dialect's default schema, or "" if the
	// dialect has no schema concept (SQLite).
	DefaultSchema() string
	// QuoteIdentifier quotes a single identifier per the dialect's rules.
	QuoteIdentifier(identifier string) string
	// VersionTableDDL returns the CREATE TABLE IF NOT EXISTS statement
	// (plus its unique index) for the version-info table, per spec.md §6.3.
	VersionTableDDL() string
	// MinServerVersion is the lowest server version this dialect has been
	// validated against. An unmet floor is logged, never fatal.
	MinServerVersion() *semver.Constraints
	// ServerVersionQuery returns a scalar query whose single result
	// column is parseable as a semver-compatible version string.
	ServerVersionQuery() string
	// SplitStatements divides a migration script's raw text into the
	// batches the driver must submit separately (spec.md §4.6: batch
	// separators "MUST be handled by splitting before submission or by
	// the underlying driver"). Dialects without a batch-separator
	// convention return the text unchanged as a single batch.
	SplitStatements(sqlText string) []string
	// Open returns a ready-to-use *sql.DB for connectionString.
	Open(ctx context.Context, connectionString string) (*sql.DB, error)
}

// Registry resolves a dialect Name to its Dialect implementation.
type Registry struct {
	dialects map[Name]Dialect
}

// NewRegistry builds the default registry wired to all three dialects.
func NewRegistry() *Registry {
	r := &Registry{dialects: make(map[Name]Dialect, 3)}
	r.Register(newPostgres())
	r.Register(newSQLite())
	r.Register(newSQLServer())
	return r
}

// Register adds or replaces a dialect in the registry.
func (r *Registry) Register(d Dialect) {
	r.dialects[d.Name()] = d
}

// Resolve looks up a dialect by name. An unknown name is a fatal
// configuration error (spec.md §4.9, §7 UnsupportedDialect).
func (r *Registry) Resolve(name Name) (Dialect, bool) {
	d, ok := r.dialects[name]
	return d, ok
}
