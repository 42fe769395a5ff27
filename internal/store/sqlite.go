package store

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements the Store interface using a local SQLite database.
type SQLiteStore struct {
	db     *sqlx.DB
	log    *slog.Logger
	closed atomic.Bool
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens (or creates) a SQLite database at dbPath, enables
// WAL mode, runs any pending schema migrations, and seeds the default
// templates on first initialization. It is safe to call on every launch;
// reopening an existing database changes nothing.
func NewSQLiteStore(dbPath string, opts ...Option) (*SQLiteStore, error) {
	o := applyOptions(opts)

	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// A single connection keeps SQLite writes serialized and makes
	// ":memory:" databases behave: each pooled connection would
	// otherwise get its own empty in-memory database.
	db.SetMaxOpenConns(1)

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db, log: o.logger}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	if err := s.seedDefaultTemplates(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("seeding default templates: %w", err)
	}

	s.log.Debug("store opened", "backend", "sqlite", "path", dbPath)
	return s, nil
}

// Close closes the underlying database connection. Subsequent operations
// fail with ErrClosed.
func (s *SQLiteStore) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	s.log.Debug("store closed", "backend", "sqlite")
	return s.db.Close()
}

// guard rejects operations on a closed store before they reach the driver.
func (s *SQLiteStore) guard() error {
	if s.closed.Load() {
		return ErrClosed
	}
	return nil
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	// Check if schema_version table exists.
	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
		s.log.Debug("applied migration", "version", m.version)
	}

	return nil
}

// formatStamp renders a timestamp for storage. All timestamps are stored
// as RFC 3339 UTC text.
func formatStamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// parseStamp reads a stored timestamp back.
func parseStamp(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	return t, nil
}

// boolToInt converts a boolean to 0 or 1 for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
