package txrunner

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schemagate/migrator/pkg/errutil"
)

func newMockProcessor(t *testing.T) (*Processor, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewProcessor(db), mock, db
}

func TestProcessor_BeginCommit(t *testing.T) {
	proc, mock, _ := newMockProcessor(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	tx, err := proc.Begin(context.Background())
	require.NoError(t, err)

	require.NoError(t, proc.Commit(tx))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessor_BeginFailure(t *testing.T) {
	proc, mock, _ := newMockProcessor(t)
	mock.ExpectBegin().WillReturnError(errors.New("connection reset"))

	_, err := proc.Begin(context.Background())
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, errutil.CodeMigrationFailed)
}

func TestProcessor_Rollback(t *testing.T) {
	proc, mock, _ := newMockProcessor(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	tx, err := proc.Begin(context.Background())
	require.NoError(t, err)
	require.NoError(t, proc.Rollback(tx))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessor_RollbackFailure(t *testing.T) {
	proc, mock, _ := newMockProcessor(t)
	mock.ExpectBegin()
	mock.ExpectRollback().WillReturnError(errors.New("tx already closed"))

	tx, err := proc.Begin(context.Background())
	require.NoError(t, err)

	err = proc.Rollback(tx)
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, errutil.CodeRollbackFailed)
}

func TestProcessor_Execute(t *testing.T) {
	proc, mock, _ := newMockProcessor(t)
	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	tx, err := proc.Begin(context.Background())
	require.NoError(t, err)
	require.NoError(t, proc.Execute(context.Background(), tx, "CREATE TABLE widgets (id INT)"))
	require.NoError(t, proc.Commit(tx))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessor_ExecuteFailure(t *testing.T) {
	proc, mock, _ := newMockProcessor(t)
	mock.ExpectBegin()
	mock.ExpectExec("BAD SQL").WillReturnError(errors.New("syntax error"))
	mock.ExpectRollback()

	tx, err := proc.Begin(context.Background())
	require.NoError(t, err)

	err = proc.Execute(context.Background(), tx, "BAD SQL")
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, errutil.CodeMigrationFailed)
	require.NoError(t, proc.Rollback(tx))
}

func TestProcessor_ExecuteNative(t *testing.T) {
	proc, mock, _ := newMockProcessor(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	tx, err := proc.Begin(context.Background())
	require.NoError(t, err)

	called := false
	err = proc.ExecuteNative(context.Background(), tx, func(_ context.Context, gotTx *sql.Tx) error {
		called = true
		assert.Same(t, tx, gotTx)
		return nil
	})
	require.NoError(t, err)
	assert.True(t, called)
	require.NoError(t, proc.Commit(tx))
}

func TestProcessor_ExecuteNativeFailure(t *testing.T) {
	proc, mock, _ := newMockProcessor(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	tx, err := proc.Begin(context.Background())
	require.NoError(t, err)

	err = proc.ExecuteNative(context.Background(), tx, func(_ context.Context, _ *sql.Tx) error {
		return errors.New("apply blew up")
	})
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, errutil.CodeMigrationFailed)
	require.NoError(t, proc.Rollback(tx))
}
