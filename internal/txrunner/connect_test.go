package txrunner

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"testing"

	"github.com/Masterminds/semver/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schemagate/migrator/internal/dialect"
	"github.com/schemagate/migrator/pkg/errutil"
)

type flakyDialect struct {
	attempts  int
	failTimes int
	name      dialect.Name
}

func (f *flakyDialect) Name() dialect.Name   { return f.name }
func (f *flakyDialect) DriverName() string   { return "sqlite" }
func (f *flakyDialect) DefaultSchema() string { return "" }
func (f *flakyDialect) QuoteIdentifier(id string) string { return `"` + id + `"` }
func (f *flakyDialect) VersionTableDDL() string { return "" }
func (f *flakyDialect) MinServerVersion() *semver.Constraints { return nil }
func (f *flakyDialect) ServerVersionQuery() string { return "" }
func (f *flakyDialect) SplitStatements(sqlText string) []string { return []string{sqlText} }

func (f *flakyDialect) Open(_ context.Context, _ string) (*sql.DB, error) {
	f.attempts++
	if f.attempts <= f.failTimes {
		return nil, errors.New("connection refused")
	}
	return sql.Open("sqlite", ":memory:")
}

func TestConnect_SucceedsAfterRetries(t *testing.T) {
	d := &flakyDialect{name: dialect.SQLite, failTimes: 2}
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	db, err := Connect(context.Background(), d, "file::memory:", logger)
	require.NoError(t, err)
	require.NotNil(t, db)
	assert.Equal(t, 3, d.attempts)
	assert.Contains(t, buf.String(), "retrying")
}

func TestConnect_FailsAfterMaxRetries(t *testing.T) {
	d := &flakyDialect{name: dialect.SQLite, failTimes: 99}

	_, err := Connect(context.Background(), d, "file::memory:", nil)
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, errutil.CodeConnectionFailed)
}
