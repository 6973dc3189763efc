package storage

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockMySQL(t *testing.T) (*MySQL, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewMySQL(db), mock
}

func TestMySQLGet(t *testing.T) {
	s, mock := newMockMySQL(t)
	mock.ExpectQuery("SELECT v FROM kv_store WHERE k = \\?").WithArgs("trips").
		WillReturnRows(sqlmock.NewRows([]string{"v"}).AddRow([]byte(`[1]`)))
	mock.ExpectQuery("SELECT v FROM kv_store WHERE k = \\?").WithArgs("users").
		WillReturnError(sql.ErrNoRows)

	v, ok, err := s.Get(context.Background(), "trips")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `[1]`, string(v))

	_, ok, err = s.Get(context.Background(), "users")
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLSetAndRemove(t *testing.T) {
	s, mock := newMockMySQL(t)
	mock.ExpectExec("INSERT INTO kv_store").WithArgs("trips", []byte(`[]`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM kv_store WHERE k = \\?").WithArgs("trips").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.Set(context.Background(), "trips", []byte(`[]`)))
	require.NoError(t, s.Remove(context.Background(), "trips"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLSetFailure(t *testing.T) {
	s, mock := newMockMySQL(t)
	mock.ExpectExec("INSERT INTO kv_store").WillReturnError(errors.New("connection reset"))

	err := s.Set(context.Background(), "trips", []byte(`[]`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIO))
}

func TestMySQLClearRollsBackOnError(t *testing.T) {
	s, mock := newMockMySQL(t)
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM kv_store").WithArgs("a").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM kv_store").WithArgs("b").WillReturnError(errors.New("lock wait timeout"))
	mock.ExpectRollback()

	err := s.Clear(context.Background(), "a", "b")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIO))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLClearCommits(t *testing.T) {
	s, mock := newMockMySQL(t)
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM kv_store").WithArgs("a").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, s.Clear(context.Background(), "a"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLEnsureSchema(t *testing.T) {
	s, mock := newMockMySQL(t)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS kv_store").WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, s.EnsureSchema(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}
