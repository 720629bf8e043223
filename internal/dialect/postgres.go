package dialect

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
	// Register the pgx/v5 database/sql driver under the name "pgx". Using
	// the stdlib adapter (rather than pgxpool directly) lets the
	// Transaction/Processor share one *sql.DB/*sql.Tx abstraction across
	// all three dialects instead of branching its own type per backend.
	_ "github.com/jackc/pgx/v5/stdlib"
)

type postgres struct {
	minVersion *semver.Constraints
}

func newPostgres() *postgres {
	c, _ := semver.NewConstraint(">= 9.6.0")
	return &postgres{minVersion: c}
}

func (postgres) Name() Name        { return PostgreSQL }
func (postgres) DriverName() string { return "pgx" }
func (postgres) DefaultSchema() string { return "public" }

func (postgres) QuoteIdentifier(identifier string) string {
	escaped := strings.ReplaceAll(identifier, `"`, `""`)
	return fmt.Sprintf(`"%s"`, escaped)
}

func (d postgres) VersionTableDDL() string {
	table := d.DefaultSchema() + "." + d.QuoteIdentifier("VersionInfo")
	return fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
	"Version" BIGINT NOT NULL,
	"AppliedOn" TIMESTAMP NOT NULL,
	"Description" TEXT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS "UC_Version" ON %s ("Version");
`, table, table)
}

func (d postgres) MinServerVersion() *semver.Constraints { return d.minVersion }

func (postgres) ServerVersionQuery() string { return "SHOW server_version" }

// SplitStatements is a no-op: the pgx driver accepts a full script as one
// batch and Postgres has no batch-separator convention.
func (postgres) SplitStatements(sqlText string) []string { return []string{sqlText} }

func (postgres) Open(ctx context.Context, connectionString string) (*sql.DB, error) {
	db, err := sql.Open("pgx", connectionString)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
