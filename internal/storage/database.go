// Package storage handles persistence around the compositing engine: the SQLite
// audit log of caption calls and the artifact files the CLI writes.
package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // registers the "sqlite3" database/sql driver
)

// The schema is a string constant compiled into the binary, so no migration
// files need to exist at runtime.
const schema = `
CREATE TABLE IF NOT EXISTS caption_calls (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    voice_id    TEXT NOT NULL,
    provider    TEXT NOT NULL,
    model       TEXT NOT NULL,
    success     BOOLEAN NOT NULL DEFAULT 0,
    error_text  TEXT,
    duration_ms INTEGER,
    created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_caption_calls_voice ON caption_calls(voice_id);
CREATE INDEX IF NOT EXISTS idx_caption_calls_created ON caption_calls(created_at);
`

// NewDatabase opens (creating if needed) the SQLite audit database at dbPath
// and applies the schema. The parent directory is created when missing.
func NewDatabase(dbPath string) (*sqlx.DB, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	// WAL lets the stats endpoint read while a battle is writing audit rows;
	// busy_timeout waits on lock contention instead of failing.
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000", dbPath)

	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Open is lazy in database/sql, Ping actually connects.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// SQLite performs best with a single writer connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}

	return db, nil
}
