package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/j-veylop/paperart-tui/internal/logger"
	"github.com/j-veylop/paperart-tui/internal/storage"
)

// KVStore is a storage.Store backed by the kv table.
type KVStore struct {
	db    *DB
	quota int64
}

var _ storage.Store = (*KVStore)(nil)

// NewKVStore returns a store over db. A quota of zero or less means
// storage.DefaultQuotaBytes.
func NewKVStore(db *DB, quota int64) *KVStore {
	if quota <= 0 {
		quota = storage.DefaultQuotaBytes
	}
	return &KVStore{db: db, quota: quota}
}

// Get implements storage.Store.
func (s *KVStore) Get(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(context.Background(),
		"SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return value, true, nil
}

// Set implements storage.Store.
func (s *KVStore) Set(key, value string) error {
	ctx := context.Background()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			logger.Error("failed to rollback kv transaction", "error", err)
		}
	}()

	var total, existing int64
	err = tx.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(length(key) + length(value)), 0),
			COALESCE(SUM(CASE WHEN key = ? THEN length(key) + length(value) ELSE 0 END), 0)
		FROM kv
	`, key).Scan(&total, &existing)
	if err != nil {
		return fmt.Errorf("failed to measure kv size: %w", err)
	}

	if total-existing+int64(len(key)+len(value)) > s.quota {
		return fmt.Errorf("set %s: %w", key, storage.ErrQuotaExceeded)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value, time.Now().UTC().Format(sqlTimeLayout))
	if err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	return tx.Commit()
}

// Remove implements storage.Store.
func (s *KVStore) Remove(key string) error {
	if _, err := s.db.ExecContext(context.Background(), "DELETE FROM kv WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}
	return nil
}

// Keys implements storage.Store.
func (s *KVStore) Keys() ([]string, error) {
	rows, err := s.db.QueryContext(context.Background(), "SELECT key FROM kv ORDER BY key")
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	defer func() { _ = rows.Close() }()

	keys := []string{}
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("failed to scan key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// Clear implements storage.Store.
func (s *KVStore) Clear() error {
	if _, err := s.db.ExecContext(context.Background(), "DELETE FROM kv"); err != nil {
		return fmt.Errorf("failed to clear kv: %w", err)
	}
	return nil
}

// Size implements storage.Store. SQLite's length() counts characters, which
// matches len() for the ASCII JSON the application writes.
func (s *KVStore) Size() (int64, error) {
	var n int64
	err := s.db.QueryRowContext(context.Background(),
		"SELECT COALESCE(SUM(length(key) + length(value)), 0) FROM kv").Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to measure kv size: %w", err)
	}
	return n, nil
}
