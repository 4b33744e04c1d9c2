package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const sqliteSchemaVersion = 1

// ErrNotFound is returned when a requested row does not exist
var ErrNotFound = errors.New("not found")

// Store wraps the SQL database shared by the repositories. The driver is
// either "sqlite" (default, local file or :memory:) or "postgres".
type Store struct {
	db     *sql.DB
	driver string
}

// Open opens the database for the given driver and DSN and ensures the schema
// is in place.
func Open(driver, dsn string) (*Store, error) {
	switch driver {
	case "sqlite":
		return openSQLite(dsn)
	case "postgres":
		return openPostgres(dsn)
	default:
		return nil, fmt.Errorf("unsupported store driver %q", driver)
	}
}

// OpenMemory creates an in-memory sqlite store for testing
func OpenMemory() (*Store, error) {
	return openSQLite(":memory:")
}

func openSQLite(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// modernc sqlite is happiest with a single connection
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to exec pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db, driver: "sqlite"}
	if err := s.migrateSQLite(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}
	return s, nil
}

func openPostgres(dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Store{db: db, driver: "postgres"}
	if _, err := db.Exec(schemaDDL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}
	return s, nil
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the database connection, for health checks
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) migrateSQLite() error {
	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("failed to read user_version: %w", err)
	}

	if version >= sqliteSchemaVersion {
		return nil
	}

	if version < 1 {
		if _, err := s.db.Exec(schemaDDL); err != nil {
			return fmt.Errorf("failed to apply schema v1: %w", err)
		}
	}

	_, err := s.db.Exec("PRAGMA user_version = " + strconv.Itoa(sqliteSchemaVersion))
	return err
}

// schemaDDL is written to run unchanged on both sqlite and postgres: TEXT
// columns only, timestamps stored as RFC3339 UTC strings, booleans as 0/1.
const schemaDDL = `
CREATE TABLE IF NOT EXISTS time_blocks (
	id                 TEXT PRIMARY KEY,
	title              TEXT NOT NULL,
	start_time         TEXT NOT NULL,
	end_time           TEXT NOT NULL,
	notes              TEXT NOT NULL DEFAULT '',
	category           TEXT NOT NULL DEFAULT '',
	icon               TEXT NOT NULL DEFAULT '',
	status             TEXT NOT NULL DEFAULT 'not_started',
	calendar_event_id  TEXT,
	created_at         TEXT NOT NULL,
	updated_at         TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_time_blocks_start ON time_blocks(start_time);

CREATE TABLE IF NOT EXISTS daily_progress (
	date                   TEXT PRIMARY KEY,
	total_blocks           INTEGER NOT NULL DEFAULT 0,
	completed_blocks       INTEGER NOT NULL DEFAULT 0,
	skipped_blocks         INTEGER NOT NULL DEFAULT 0,
	completion_percentage  REAL NOT NULL DEFAULT 0,
	performance_level      TEXT NOT NULL DEFAULT 'none',
	rating                 INTEGER,
	notes                  TEXT NOT NULL DEFAULT '',
	summary_viewed         INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS settings (
	key    TEXT PRIMARY KEY,
	value  TEXT NOT NULL
);
`

// rebind rewrites '?' placeholders to '$n' for postgres. Queries in this
// package are written with '?' and passed through rebind before execution.
func (s *Store) rebind(query string) string {
	if s.driver != "postgres" {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$")
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
