package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
)

const schema = `CREATE TABLE IF NOT EXISTS kv_entries (
	entry_key   VARCHAR(255) PRIMARY KEY,
	entry_value TEXT NOT NULL,
	updated_at  TIMESTAMP NOT NULL
)`

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// SQL stores entries in the kv_entries table. It works against both the
// postgres and sqlite3 drivers; placeholders are rebound per driver.
type SQL struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewSQL wraps an open database handle.
func NewSQL(db *sqlx.DB) *SQL {
	return &SQL{db: db, now: time.Now}
}

// Migrate creates the backing table when it does not exist.
func (s *SQL) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create kv_entries: %w", err)
	}
	return nil
}

func (s *SQL) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	query := s.db.Rebind(`SELECT entry_value FROM kv_entries WHERE entry_key = ?`)
	if err := s.db.GetContext(ctx, &value, query, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	return value, true, nil
}

func (s *SQL) Set(ctx context.Context, key, value string) error {
	query := s.db.Rebind(`INSERT INTO kv_entries (entry_key, entry_value, updated_at) VALUES (?, ?, ?)
ON CONFLICT (entry_key) DO UPDATE SET entry_value = excluded.entry_value, updated_at = excluded.updated_at`)
	if _, err := s.db.ExecContext(ctx, query, key, value, s.now().UTC()); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (s *SQL) Delete(ctx context.Context, key string) error {
	query := s.db.Rebind(`DELETE FROM kv_entries WHERE entry_key = ?`)
	if _, err := s.db.ExecContext(ctx, query, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (s *SQL) Keys(ctx context.Context, prefix string) ([]string, error) {
	keys := []string{}
	query := s.db.Rebind(`SELECT entry_key FROM kv_entries WHERE entry_key LIKE ? ESCAPE '\' ORDER BY entry_key`)
	if err := s.db.SelectContext(ctx, &keys, query, likeEscaper.Replace(prefix)+"%"); err != nil {
		return nil, fmt.Errorf("list keys %s: %w", prefix, err)
	}
	return keys, nil
}
