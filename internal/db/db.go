// Package db persists the stub service's warning mode and its change log in
// SQLite.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"warnmode/internal/settings"

	_ "modernc.org/sqlite"
)

// ModeKey is the app_settings key holding the current warning mode.
const ModeKey = "waringmode"

// DefaultMode is reported before any change has been stored.
const DefaultMode = "close"

// Change is one recorded warning mode change.
type Change struct {
	ID        int64     `json:"id"`
	Mode      string    `json:"mode"`
	RequestID string    `json:"request_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Store wraps the database used by the stub service.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating if needed) the SQLite database at path and migrates it.
// A directory path gets a warnmode.db file inside it.
func Open(ctx context.Context, path string) (*Store, error) {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, "warnmode.db")
	}
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", path))
	if err != nil {
		return nil, err
	}
	s, err := New(ctx, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// New migrates db and wraps it in a Store.
func New(ctx context.Context, db *sql.DB) (*Store, error) {
	if err := Migrate(ctx, db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// CurrentMode returns the stored mode, DefaultMode when none is stored.
func (s *Store) CurrentMode(ctx context.Context) (string, error) {
	return settings.New(s.db).GetDefault(ctx, ModeKey, DefaultMode)
}

// SetMode stores mode and appends a change row in one transaction.
func (s *Store) SetMode(ctx context.Context, mode, requestID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if err := settings.New(tx).Set(ctx, ModeKey, mode); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO mode_changes(mode, request_id, created_at) VALUES(?,?,?)`,
		mode, requestID, s.now().UnixNano()); err != nil {
		return err
	}
	return tx.Commit()
}

// ListChanges returns up to limit changes, newest first.
func (s *Store) ListChanges(ctx context.Context, limit int) ([]Change, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, mode, request_id, created_at FROM mode_changes ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	changes := []Change{}
	for rows.Next() {
		var c Change
		var ts int64
		if err := rows.Scan(&c.ID, &c.Mode, &c.RequestID, &ts); err != nil {
			return nil, err
		}
		c.CreatedAt = time.Unix(0, ts).UTC()
		changes = append(changes, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return changes, nil
}

// PruneChanges deletes changes recorded before the given time.
func (s *Store) PruneChanges(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM mode_changes WHERE created_at < ?`, before.UnixNano())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
