package shownotes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"autoshow/internal/retry"
)

// Store persists show notes in SQLite.
type Store struct {
	db   *sql.DB
	path string
	// writeMu serializes inserts from concurrent pipeline workers.
	writeMu sync.Mutex
	busy    retry.Policy
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
)

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func busyPolicy() retry.Policy {
	return retry.Policy{
		MaxAttempts: busyRetryAttempts,
		BaseDelay:   busyRetryInitialBackoff,
		Retryable:   isSQLiteBusy,
	}
}

// retryOnBusy repeats op while SQLite reports the database as locked.
func (s *Store) retryOnBusy(ctx context.Context, op func() error) error {
	_, err := retry.Do(ctx, s.busy, "sqlite write", func(context.Context) (struct{}, error) {
		return struct{}{}, op()
	})
	return err
}

// Open initializes or connects to the show-note database at path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("database path required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create database dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path, busy: busyPolicy()}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
