package dialect

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
	// Register the SQL Server database/sql driver under the name
	// "sqlserver".
	_ "github.com/denisenkom/go-mssqldb"
)

// goSeparator matches a line containing only the "GO" batch separator
// (optionally followed by a sqlcmd repeat count), case-insensitive, the
// convention SSMS and FluentMigrator scripts use. go-mssqldb has no
// notion of batches, so this must be handled before the text reaches
// ExecContext.
var goSeparator = regexp.MustCompile(`(?mi)^[ \t]*GO[ \t]*[0-9]*[ \t]*$`)

type sqlServer struct {
	minVersion *semver.Constraints
}

func newSQLServer() *sqlServer {
	c, _ := semver.NewConstraint(">= 11.0.0")
	return &sqlServer{minVersion: c}
}

func (sqlServer) Name() Name         { return SQLServer }
func (sqlServer) DriverName() string { return "sqlserver" }
func (sqlServer) DefaultSchema() string { return "dbo" }

func (sqlServer) QuoteIdentifier(identifier string) string {
	return fmt.Sprintf("[%s]", identifier)
}

func (d sqlServer) VersionTableDDL() string {
	table := d.DefaultSchema() + "." + d.QuoteIdentifier("VersionInfo")
	return fmt.Sprintf(`
IF NOT EXISTS (SELECT * FROM sys.tables WHERE name = 'VersionInfo' AND schema_id = SCHEMA_ID('%s'))
BEGIN
	CREATE TABLE %s (
		[Version] BIGINT NOT NULL,
		[AppliedOn] DATETIME2 NOT NULL,
		[Description] NVARCHAR(MAX) NULL
	);
	CREATE UNIQUE INDEX [UC_Version] ON %s ([Version]);
END
`, d.DefaultSchema(), table, table)
}

func (d sqlServer) MinServerVersion() *semver.Constraints { return d.minVersion }

func (sqlServer) ServerVersionQuery() string { return "SELECT CAST(SERVERPROPERTY('ProductVersion') AS NVARCHAR(128))" }

// SplitStatements breaks sqlText on "GO" batch separator lines. Each
// resulting batch is submitted to the driver independently.
func (sqlServer) SplitStatements(sqlText string) []string {
	parts := goSeparator.Split(sqlText, -1)
	batches := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			batches = append(batches, trimmed)
		}
	}
	if len(batches) == 0 {
		return []string{sqlText}
	}
	return batches
}

func (sqlServer) Open(ctx context.Context, connectionString string) (*sql.DB, error) {
	db, err := sql.Open("sqlserver", connectionString)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
