// Package database provides SQLite connection management for the
// optional capture index.
package database

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// New opens the capture index database, applying WAL mode and a busy
// timeout so log-heavy bursts don't trip SQLITE_BUSY.
func New(path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000", path)
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open capture index: %w", err)
	}

	conn.SetMaxOpenConns(5)
	conn.SetMaxIdleConns(2)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping capture index: %w", err)
	}

	if err := InitSchema(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("init capture index schema: %w", err)
	}

	return conn, nil
}

// InitSchema creates the capture table. Idempotent; the index has a
// single table and no migration history to track.
func InitSchema(db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS captures (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    request_id TEXT UNIQUE NOT NULL,
    captured_at TEXT NOT NULL,
    client TEXT NOT NULL,
    method TEXT NOT NULL,
    path TEXT NOT NULL,
    url TEXT NOT NULL,
    header_count INTEGER NOT NULL DEFAULT 0,
    body_length INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_captures_captured_at ON captures(captured_at);
CREATE INDEX IF NOT EXISTS idx_captures_method ON captures(method);
`
	_, err := db.Exec(schema)
	return err
}
