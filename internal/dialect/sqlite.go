package dialect

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
	// modernc.org/sqlite is a CGO-free database/sql driver registered
	// under the name "sqlite", so the engine and its tests build without
	// a C toolchain (unlike mattn/go-sqlite3).
	_ "modernc.org/sqlite"
)

type sqliteDialect struct {
	minVersion *semver.Constraints
}

func newSQLite() *sqliteDialect {
	c, _ := semver.NewConstraint(">= 3.0.0")
	return &sqliteDialect{minVersion: c}
}

func (sqliteDialect) Name() Name         { return SQLite }
func (sqliteDialect) DriverName() string { return "sqlite" }
func (sqliteDialect) DefaultSchema() string { return "" }

func (sqliteDialect) QuoteIdentifier(identifier string) string {
	escaped := strings.ReplaceAll(identifier, `"`, `""`)
	return fmt.Sprintf(`"%s"`, escaped)
}

func (d sqliteDialect) VersionTableDDL() string {
	table := d.QuoteIdentifier("VersionInfo")
	return fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
	"Version" BIGINT NOT NULL,
	"AppliedOn" TIMESTAMP NOT NULL,
	"Description" TEXT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS "UC_Version" ON %s ("Version");
`, table, table)
}

func (d sqliteDialect) MinServerVersion() *semver.Constraints { return d.minVersion }

func (sqliteDialect) ServerVersionQuery() string { return "SELECT sqlite_version()" }

// SplitStatements is a no-op: SQLite has no batch-separator convention.
func (sqliteDialect) SplitStatements(sqlText string) []string { return []string{sqlText} }

func (sqliteDialect) Open(ctx context.Context, connectionString string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", connectionString)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	// SQLite only tolerates a single writer; the engine already guarantees
	// single-threaded, strictly sequential job application (spec.md §5),
	// so one connection is sufficient and avoids SQLITE_BUSY churn.
	db.SetMaxOpenConns(1)
	return db, nil
}
