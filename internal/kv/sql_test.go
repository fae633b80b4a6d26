package kv

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLMock(t *testing.T) (*SQL, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	store := NewSQL(sqlx.NewDb(db, "postgres"))
	store.now = func() time.Time { return time.Date(2024, 1, 20, 9, 0, 0, 0, time.UTC) }
	return store, mock, func() { _ = db.Close() }
}

func TestSQLGet(t *testing.T) {
	store, mock, cleanup := newSQLMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT entry_value FROM kv_entries WHERE entry_key = $1`)).
		WithArgs("wellness_system_tasks").
		WillReturnRows(sqlmock.NewRows([]string{"entry_value"}).AddRow(`[{"id":"task_1"}]`))

	v, found, err := store.Get(context.Background(), "wellness_system_tasks")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `[{"id":"task_1"}]`, v)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLGetMissing(t *testing.T) {
	store, mock, cleanup := newSQLMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT entry_value FROM kv_entries`)).
		WithArgs("userRole").
		WillReturnError(sql.ErrNoRows)

	_, found, err := store.Get(context.Background(), "userRole")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSQLGetError(t *testing.T) {
	store, mock, cleanup := newSQLMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT entry_value FROM kv_entries`)).
		WillReturnError(errors.New("conn reset"))

	_, _, err := store.Get(context.Background(), "userRole")
	assert.ErrorContains(t, err, "conn reset")
}

func TestSQLSetUpserts(t *testing.T) {
	store, mock, cleanup := newSQLMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO kv_entries (entry_key, entry_value, updated_at) VALUES ($1, $2, $3)
ON CONFLICT (entry_key) DO UPDATE`)).
		WithArgs("wellness_system_moods", "[]", time.Date(2024, 1, 20, 9, 0, 0, 0, time.UTC)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.Set(context.Background(), "wellness_system_moods", "[]"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLDelete(t *testing.T) {
	store, mock, cleanup := newSQLMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM kv_entries WHERE entry_key = $1`)).
		WithArgs("session:abc:userRole").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.Delete(context.Background(), "session:abc:userRole"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLKeysEscapesLikePattern(t *testing.T) {
	store, mock, cleanup := newSQLMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT entry_key FROM kv_entries WHERE entry_key LIKE $1`)).
		WithArgs(`wellness\_system\_%`).
		WillReturnRows(sqlmock.NewRows([]string{"entry_key"}).
			AddRow("wellness_system_sessions").
			AddRow("wellness_system_tasks"))

	keys, err := store.Keys(context.Background(), "wellness_system_")
	require.NoError(t, err)
	assert.Equal(t, []string{"wellness_system_sessions", "wellness_system_tasks"}, keys)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLMigrate(t *testing.T) {
	store, mock, cleanup := newSQLMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE IF NOT EXISTS kv_entries`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, store.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
