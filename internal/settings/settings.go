package settings

import (
	"context"
	"database/sql"
	"errors"
)

// Querier is the subset of *sql.DB and *sql.Tx the store needs.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// ErrEmptyKey is returned when writing a setting without a key.
var ErrEmptyKey = errors.New("settings: empty key")

// Store reads and writes rows of the app_settings table.
type Store struct {
	q Querier
}

// New returns a Store over q, which may be a database or a transaction.
func New(q Querier) *Store {
	return &Store{q: q}
}

// Get returns the value for key, or "" when the key is not set.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", nil
	}
	var val string
	err := s.q.QueryRowContext(ctx, `SELECT value FROM app_settings WHERE key=?`, key).Scan(&val)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return val, err
}

// GetDefault returns the value for key, or def when the key is not set.
func (s *Store) GetDefault(ctx context.Context, key, def string) (string, error) {
	v, err := s.Get(ctx, key)
	if err != nil || v == "" {
		return def, err
	}
	return v, nil
}

// Set stores or replaces the value for key.
func (s *Store) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return ErrEmptyKey
	}
	_, err := s.q.ExecContext(ctx, `INSERT INTO app_settings(key, value) VALUES(?,?)
ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=CURRENT_TIMESTAMP`, key, value)
	return err
}
