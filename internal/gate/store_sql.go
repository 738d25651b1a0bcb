// internal/gate/store_sql.go
//
// MySQL-backed counter store.
//
// Schema:
//
//	CREATE TABLE rate_counter (
//	  ip         VARCHAR(45) PRIMARY KEY,
//	  count      INT UNSIGNED NOT NULL,
//	  expires_at BIGINT       NOT NULL
//	);
//
// REPLACE keeps Store a single statement; expired rows are simply
// overwritten on the next visit from the same address.
package gate

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

// SQLCounterStore persists window counters in the rate_counter table.
type SQLCounterStore struct {
	db *sqlx.DB
}

// NewSQLCounterStore wraps an open pool.
func NewSQLCounterStore(db *sqlx.DB) *SQLCounterStore {
	return &SQLCounterStore{db: db}
}

// Fetch implements CounterStore.
func (s *SQLCounterStore) Fetch(ctx context.Context, key string) (Counter, bool, error) {
	var row struct {
		Count     int   `db:"count"`
		ExpiresAt int64 `db:"expires_at"`
	}
	err := s.db.GetContext(ctx, &row,
		"SELECT `count`, expires_at FROM rate_counter WHERE ip = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return Counter{}, false, nil
	}
	if err != nil {
		return Counter{}, false, err
	}
	return Counter{Count: row.Count, ExpiresAt: row.ExpiresAt}, true, nil
}

// Store implements CounterStore.
func (s *SQLCounterStore) Store(ctx context.Context, key string, c Counter) error {
	_, err := s.db.ExecContext(ctx,
		"REPLACE INTO rate_counter (ip, `count`, expires_at) VALUES (?, ?, ?)",
		key, c.Count, c.ExpiresAt)
	return err
}
