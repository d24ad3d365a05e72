package store

import (
	"database/sql"
	_ "embed"
	"fmt"
	"net/url"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Store persists analysis runs in a single SQLite file.
type Store struct {
	db *sql.DB
}

// connPragma is a per-connection setting passed through the DSN so every
// pooled connection gets it, not just the first one.
type connPragma struct {
	dsnKey string
	name   string
	value  string
	// reported is what PRAGMA <name> returns once the setting took effect.
	reported string
}

var connPragmas = []connPragma{
	{dsnKey: "_journal_mode", name: "journal_mode", value: "WAL", reported: "wal"},
	{dsnKey: "_synchronous", name: "synchronous", value: "NORMAL", reported: "1"},
	{dsnKey: "_busy_timeout", name: "busy_timeout", value: "5000", reported: "5000"},
	{dsnKey: "_foreign_keys", name: "foreign_keys", value: "on", reported: "1"},
}

// migration upgrades the schema from version-1 to version.
type migration struct {
	version int
	name    string
	stmts   []string
}

// migrations run in order against any database whose user_version is lower
// than their version. Append only.
var migrations = []migration{
	{
		version: 1,
		name:    "runs listing index",
		stmts: []string{
			`CREATE INDEX IF NOT EXISTS idx_runs_model_started ON runs(model, started_at)`,
		},
	},
}

var currentSchemaVersion = migrations[len(migrations)-1].version

// Open opens the run database at path, creating it when missing, and brings
// its schema up to date. Opening an existing database twice is harmless.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open run database %s: %w", path, err)
	}
	// One writer at a time; a single connection avoids SQLITE_BUSY between
	// our own goroutines.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Store{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open run database %s: %w", path, err)
	}
	return s, nil
}

func dsn(path string) string {
	q := url.Values{}
	for _, p := range connPragmas {
		q.Set(p.dsnKey, p.value)
	}
	return path + "?" + q.Encode()
}

func (s *Store) init() error {
	if err := s.db.Ping(); err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	for _, p := range connPragmas {
		if err := s.verifyPragma(p.name, p.reported); err != nil {
			return err
		}
	}
	if _, err := s.db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	return s.migrate()
}

func (s *Store) schemaVersion() (int, error) {
	var v int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("read user_version: %w", err)
	}
	return v, nil
}

func (s *Store) migrate() error {
	have, err := s.schemaVersion()
	if err != nil {
		return err
	}
	if have > currentSchemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported version %d", have, currentSchemaVersion)
	}
	for _, m := range migrations {
		if m.version <= have {
			continue
		}
		if err := s.applyMigration(m); err != nil {
			return fmt.Errorf("migrate to v%d (%s): %w", m.version, m.name, err)
		}
	}
	return nil
}

// applyMigration runs m and bumps user_version in one transaction so a
// failed step leaves the previous version in place.
func (s *Store) applyMigration(m migration) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range m.stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}
	if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", m.version)); err != nil {
		return err
	}
	return tx.Commit()
}

// Close releases the database. A zero Store closes cleanly.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) verifyPragma(name, want string) error {
	var got string
	if err := s.db.QueryRow("PRAGMA " + name).Scan(&got); err != nil {
		return fmt.Errorf("read pragma %s: %w", name, err)
	}
	if !strings.EqualFold(got, want) {
		return fmt.Errorf("pragma %s = %q, want %q", name, got, want)
	}
	return nil
}
