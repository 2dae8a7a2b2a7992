// Package storage provides SQLite-based session persistence.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// schema creates the session table. Files and tab order are stored as JSON
// documents; the workspace is small and always loaded whole.
const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id            TEXT PRIMARY KEY,
	name          TEXT NOT NULL UNIQUE,
	created_at    TEXT NOT NULL,
	saved_at      TEXT NOT NULL,
	specialist    TEXT,
	files         TEXT NOT NULL,
	open_tab_ids  TEXT NOT NULL,
	active_tab_id TEXT
);
CREATE INDEX IF NOT EXISTS idx_sessions_saved_at ON sessions(saved_at);
`

// Open opens (creating when needed) the sqlite database at path and
// applies the schema.
func Open(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return db, nil
}
