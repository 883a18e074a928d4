package creds

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const credentialName = "session"

// Store persists opaque session credentials in SQLite so the same
// linked-device identity can be resumed after a restart.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewStore(dbPath string, logger *slog.Logger) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create database directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}

	// Single connection for SQLite
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	store := &Store{db: db, logger: logger}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database migration failed: %w", err)
	}

	return store, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS credentials (
		name        TEXT PRIMARY KEY,
		blob        BLOB NOT NULL,
		updated_at  DATETIME NOT NULL
	);`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Load returns the persisted credential blob, or nil when no pairing has
// happened yet.
func (s *Store) Load(ctx context.Context) ([]byte, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT blob FROM credentials WHERE name = ?", credentialName,
	).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load credentials: %w", err)
	}
	return blob, nil
}

// Save overwrites the persisted credential blob.
func (s *Store) Save(ctx context.Context, blob []byte) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO credentials (name, blob, updated_at) VALUES (?, ?, ?)",
		credentialName, blob, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}
	s.logger.Debug("credentials persisted", "bytes", len(blob))
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
