// Package localdb is a self-hosted backend: the journal tables live in a
// sqlite file, and processes sharing the file see each other's writes
// through a filesystem watch.
package localdb

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// DB is a gateway.Backend and livesync.Feed over one sqlite file.
type DB struct {
	db   *sql.DB
	path string
	now  func() time.Time

	// Throttle coalesces bursts of file activity into one change.
	Throttle time.Duration
}

// Open opens or creates the database at path and brings its schema up to
// date.
func Open(path string) (*DB, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("localdb: path required")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("localdb: resolve %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o700); err != nil {
		return nil, fmt.Errorf("localdb: ensure directory: %w", err)
	}

	params := url.Values{}
	params.Add("_journal_mode", "WAL")
	params.Add("_busy_timeout", "5000")
	params.Add("_foreign_keys", "on")
	dsn := "file:" + abs + "?" + params.Encode()

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("localdb: open %s: %w", abs, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("localdb: ping %s: %w", abs, err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("localdb: enable foreign keys: %w", err)
	}
	if err := upgrade(db, abs); err != nil {
		db.Close()
		return nil, err
	}
	return &DB{db: db, path: abs, now: time.Now, Throttle: 100 * time.Millisecond}, nil
}

// Path is the database file.
func (d *DB) Path() string {
	return d.path
}

// Close closes the database.
func (d *DB) Close() error {
	return d.db.Close()
}

func schemaVersion(db *sql.DB) (int64, error) {
	var version int64
	err := db.QueryRow(`SELECT version FROM schema_versions WHERE component = ?;`, component).Scan(&version)
	switch {
	case err == nil:
		return version, nil
	case errors.Is(err, sql.ErrNoRows):
		return 0, nil
	case strings.Contains(err.Error(), "no such table"):
		return 0, nil
	default:
		return 0, fmt.Errorf("localdb: read schema version: %w", err)
	}
}

func upgrade(db *sql.DB, name string) error {
	current, err := schemaVersion(db)
	if err != nil {
		return err
	}
	switch {
	case current == SchemaVersion:
		return nil
	case current > SchemaVersion:
		return fmt.Errorf("localdb: %s has schema version %d, newer than supported %d", name, current, SchemaVersion)
	case current != 0:
		return fmt.Errorf("localdb: %s has schema version %d; no migration to %d", name, current, SchemaVersion)
	}

	if _, err := db.Exec(schemaV1); err != nil {
		return fmt.Errorf("localdb: create schema: %w", err)
	}
	_, err = db.Exec(`
INSERT INTO schema_versions (component, version) VALUES (?, ?)
ON CONFLICT(component) DO UPDATE SET version = excluded.version, created_at = unixepoch();`,
		component, SchemaVersion)
	if err != nil {
		return fmt.Errorf("localdb: record schema version: %w", err)
	}
	log.Printf("localdb: %s initialized at schema version %d", name, SchemaVersion)
	return nil
}
