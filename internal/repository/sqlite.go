package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// For in-memory SQLite, multiple connections create separate databases.
	// Keep a single connection to avoid schema/data disappearing across goroutines.
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// migrate runs database migrations.
func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS session_entries (
			browser_id TEXT NOT NULL,
			key TEXT NOT NULL,
			value TEXT NOT NULL,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (browser_id, key)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_session_entries_updated ON session_entries(updated_at)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\n%s", err, m)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ReplaceEntries replaces every entry of a browser in one transaction.
func (s *SQLiteStore) ReplaceEntries(ctx context.Context, browserID string, entries map[string]string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM session_entries WHERE browser_id = ?`, browserID); err != nil {
		return fmt.Errorf("failed to delete entries: %w", err)
	}

	now := time.Now().UTC()
	for key, value := range entries {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO session_entries (browser_id, key, value, updated_at) VALUES (?, ?, ?, ?)`,
			browserID, key, value, now); err != nil {
			return fmt.Errorf("failed to insert entry %s: %w", key, err)
		}
	}

	return tx.Commit()
}

// DeleteEntries removes every entry of a browser.
func (s *SQLiteStore) DeleteEntries(ctx context.Context, browserID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM session_entries WHERE browser_id = ?`, browserID)
	return err
}

// GetEntries returns the entries of a browser.
func (s *SQLiteStore) GetEntries(ctx context.Context, browserID string) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key, value FROM session_entries WHERE browser_id = ?`, browserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		entries[key] = value
	}
	return entries, rows.Err()
}

// DeleteExpired removes the sessions whose entries were written before the cutoff.
func (s *SQLiteStore) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM session_entries WHERE browser_id IN (
			SELECT DISTINCT browser_id FROM session_entries WHERE updated_at < ?
		)`, before.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
