// Package store provides the SQLite-backed data access layer for ideas,
// tags, and relations.
package store

import (
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// DB wraps a sql.DB with idea-store operations. Every mutating operation
// runs in its own transaction: committed once on success, rolled back on
// any failure.
type DB struct {
	conn *sql.DB
	now  func() time.Time
}

// Open opens (or creates) the SQLite database and applies the schema.
// The schema is idempotent, so opening an existing store is safe.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: apply schema: %w", err)
	}
	return &DB{conn: conn, now: time.Now}, nil
}

// SetClock overrides the time source. Test hook; the clock feeds slug
// generation and updated_at stamps.
func (db *DB) SetClock(now func() time.Time) {
	db.now = now
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
