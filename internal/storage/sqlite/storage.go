// Package sqlite provides a SQLite-backed storage implementation.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cristianoliveira/soundboard/internal/domain"
	_ "modernc.org/sqlite"
)

// ErrEmptyKey indicates a read or write with an empty key.
var ErrEmptyKey = errors.New("sqlite storage: key cannot be empty")

const schemaSQL = `
CREATE TABLE IF NOT EXISTS kv (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	updated_at TEXT NOT NULL
);`

const (
	selectValueSQL = `SELECT value FROM kv WHERE key = ?`
	upsertValueSQL = `
INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
)

// Store keeps each key as a JSON document in a single kv table.
type Store struct {
	db *sql.DB
}

// NewStore creates a SQLite-backed store at the provided path.
func NewStore(dbPath string) (*Store, error) {
	if strings.TrimSpace(dbPath) == "" {
		return nil, fmt.Errorf("sqlite storage: db path cannot be empty")
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("sqlite storage: create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite storage: open db: %w", err)
	}

	store := &Store{db: db}
	if err := store.init(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

func (s *Store) init() error {
	if _, err := s.db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		return fmt.Errorf("sqlite storage: set busy timeout: %w", err)
	}

	if _, err := s.db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("sqlite storage: create schema: %w", err)
	}

	return nil
}

// Get returns the list stored under key.
func (s *Store) Get(ctx context.Context, key string) ([]domain.Sound, bool, error) {
	if key == "" {
		return nil, false, ErrEmptyKey
	}
	var raw string
	err := s.db.QueryRowContext(ctx, selectValueSQL, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("sqlite storage: read %s: %w", key, err)
	}
	var value []domain.Sound
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return nil, false, fmt.Errorf("sqlite storage: parse %s: %w", key, err)
	}
	if value == nil {
		value = []domain.Sound{}
	}
	return value, true, nil
}

// Set replaces the list stored under key.
func (s *Store) Set(ctx context.Context, key string, value []domain.Sound) error {
	if key == "" {
		return ErrEmptyKey
	}
	if value == nil {
		value = []domain.Sound{}
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("sqlite storage: marshal %s: %w", key, err)
	}
	if _, err := s.db.ExecContext(ctx, upsertValueSQL, key, string(data), utcNow()); err != nil {
		return fmt.Errorf("sqlite storage: write %s: %w", key, err)
	}
	return nil
}

// Close closes the underlying SQLite connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func utcNow() string {
	return time.Now().UTC().Format(time.RFC3339)
}
