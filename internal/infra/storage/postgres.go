package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// PostgresBackend keeps each key as one row of kv_store.
type PostgresBackend struct {
	db *sql.DB
}

const createKVStore = `CREATE TABLE IF NOT EXISTS kv_store (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// NewPostgresBackend ensures the kv_store table exists.
func NewPostgresBackend(ctx context.Context, db *sql.DB) (*PostgresBackend, error) {
	if _, err := db.ExecContext(ctx, createKVStore); err != nil {
		return nil, fmt.Errorf("error creating kv_store table: %w", err)
	}
	return &PostgresBackend{db: db}, nil
}

func (r *PostgresBackend) Read(ctx context.Context, key string) (string, bool, error) {
	query := `SELECT value FROM kv_store WHERE key = $1`
	var value string
	err := r.db.QueryRowContext(ctx, query, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("error reading key %q: %w", key, err)
	}
	return value, true, nil
}

func (r *PostgresBackend) Write(ctx context.Context, key, text string) error {
	query := `INSERT INTO kv_store (key, value, updated_at)
               VALUES ($1, $2, NOW())
               ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`
	if _, err := r.db.ExecContext(ctx, query, key, text); err != nil {
		return fmt.Errorf("error writing key %q: %w", key, err)
	}
	return nil
}
