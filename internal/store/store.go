package store

import (
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// settings are applied to every connection, in order.
var settings = []struct{ name, value string }{
	{"journal_mode", "WAL"},
	{"synchronous", "NORMAL"},
	{"busy_timeout", "5000"},
	{"foreign_keys", "ON"},
}

// migration upgrades a database from version-1 to version.
type migration struct {
	version int
	name    string
	stmt    string
}

// migrations run in order on databases whose user_version is below their
// version. schema.sql holds the version 0 tables.
var migrations = []migration{
	{1, "instances by template", `CREATE INDEX IF NOT EXISTS idx_instances_template ON instances(template_key, run_id)`},
	{2, "run attempt budget", `ALTER TABLE runs ADD COLUMN attempts INTEGER NOT NULL DEFAULT 100`},
}

// currentSchemaVersion is the user_version of a fully migrated database.
var currentSchemaVersion = migrations[len(migrations)-1].version

// Store records generation runs and their instances in SQLite.
type Store struct {
	db *sql.DB
}

// Open creates or opens the run database at path (":memory:" for a
// throwaway store), then applies settings, the base schema and any pending
// migrations. Opening an up-to-date database changes nothing.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One connection: SQLite has a single writer, and an in-memory
	// database exists per connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := initialize(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func initialize(db *sql.DB) error {
	if err := db.Ping(); err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	for _, s := range settings {
		if _, err := db.Exec(fmt.Sprintf("PRAGMA %s = %s", s.name, s.value)); err != nil {
			return fmt.Errorf("set %s: %w", s.name, err)
		}
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return migrate(db)
}

// migrate applies each pending migration in its own transaction together
// with the user_version bump, so a failed step leaves the previous version.
func migrate(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	for _, m := range migrations {
		if m.version <= version {
			continue
		}
		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
		}
		if _, err := tx.Exec(m.stmt); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
		}
		if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", m.version)); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s): set user_version: %w", m.version, m.name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
		}
	}
	return nil
}

// schemaVersion returns the stored user_version. Used by tests.
func (s *Store) schemaVersion() (int, error) {
	var version int
	err := s.db.QueryRow("PRAGMA user_version").Scan(&version)
	return version, err
}

// pragma returns the value of a pragma as text. Used by tests.
func (s *Store) pragma(name string) (string, error) {
	var value string
	err := s.db.QueryRow(fmt.Sprintf("PRAGMA %s", name)).Scan(&value)
	return value, err
}
