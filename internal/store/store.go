package store

import (
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// pragmas are applied to the single connection on Open, in order.
var pragmas = []struct {
	name  string
	value string
}{
	{"journal_mode", "WAL"},
	{"synchronous", "NORMAL"},
	{"busy_timeout", "5000"},
}

// migrations[i] upgrades a database from user_version i to i+1. The
// current schema version is len(migrations).
var migrations = []func(*sql.Tx) error{
	// v1: index snapshots by target and seq for Latest and List.
	func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			CREATE INDEX IF NOT EXISTS idx_snapshots_target_seq
			ON snapshots(board, build_type, seq)
		`)
		return err
	},
}

var currentSchemaVersion = len(migrations)

// Store keeps resolved mappings per board and build type.
type Store struct {
	db  *sql.DB
	ids IDGenerator
}

// Open creates or opens the snapshot database at path, applying pragmas
// and migrations. Two kgen runs recording into the same file wait on each
// other through busy_timeout.
func Open(path string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot database: %w", err)
	}
	// Pragmas are per connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := setup(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("open snapshot database %s: %w", path, err)
	}

	s := &Store{db: db, ids: UUIDv7Generator{}}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func setup(db *sql.DB) error {
	if err := db.Ping(); err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	for _, p := range pragmas {
		if _, err := db.Exec(fmt.Sprintf("PRAGMA %s = %s", p.name, p.value)); err != nil {
			return fmt.Errorf("pragma %s: %w", p.name, err)
		}
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return migrate(db)
}

// migrate runs every migration above the database's user_version, each in
// its own transaction.
func migrate(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	for v := version; v < len(migrations); v++ {
		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("migrate to v%d: %w", v+1, err)
		}
		if err := migrations[v](tx); err != nil {
			tx.Rollback()
			return fmt.Errorf("migrate to v%d: %w", v+1, err)
		}
		// PRAGMA does not take bound parameters.
		if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", v+1)); err != nil {
			tx.Rollback()
			return fmt.Errorf("migrate to v%d: set user_version: %w", v+1, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migrate to v%d: commit: %w", v+1, err)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// verifyPragma reports whether pragma name currently reads as expected.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	if err := s.db.QueryRow("PRAGMA " + name).Scan(&value); err != nil {
		return fmt.Errorf("query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
