// Package storage persists analysis runs in SQLite.
package storage

import (
	"database/sql"
	"fmt"
	"time"
)

// SchemaVersion is written to the metadata table on creation.
const SchemaVersion = "1"

// CreateSchema creates all tables and indexes if they do not exist yet.
// Uses a transaction so that schema creation succeeds or fails as a whole.
//
// Must be called with SQLite PRAGMA foreign_keys = ON.
func CreateSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin schema transaction: %w", err)
	}
	defer tx.Rollback() // Safe to call even after commit

	tables := []struct {
		name string
		ddl  string
	}{
		{"metadata", createMetadataTable},
		{"runs", createRunsTable},
		{"methods", createMethodsTable},
		{"opportunities", createOpportunitiesTable},
	}
	for _, table := range tables {
		if _, err := tx.Exec(table.ddl); err != nil {
			return fmt.Errorf("failed to create %s table: %w", table.name, err)
		}
	}

	for i, idx := range indexes {
		if _, err := tx.Exec(idx); err != nil {
			return fmt.Errorf("failed to create index %d: %w", i+1, err)
		}
	}

	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := tx.Exec(
		`INSERT OR IGNORE INTO metadata (key, value, updated_at) VALUES ('schema_version', ?, ?)`,
		SchemaVersion, now,
	); err != nil {
		return fmt.Errorf("failed to bootstrap metadata: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit schema transaction: %w", err)
	}
	return nil
}

// GetSchemaVersion retrieves the schema version from metadata.
// Returns "0" if the table doesn't exist (new database).
func GetSchemaVersion(db *sql.DB) (string, error) {
	var tableExists int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='metadata'").Scan(&tableExists)
	if err != nil {
		return "", fmt.Errorf("failed to check metadata existence: %w", err)
	}
	if tableExists == 0 {
		return "0", nil
	}

	var version string
	err = db.QueryRow("SELECT value FROM metadata WHERE key = 'schema_version'").Scan(&version)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("schema_version key not found in metadata")
	}
	if err != nil {
		return "", fmt.Errorf("failed to query schema version: %w", err)
	}
	return version, nil
}

const createMetadataTable = `
CREATE TABLE IF NOT EXISTS metadata (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TEXT NOT NULL
)
`

const createRunsTable = `
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,                         -- UUID
    started_at TEXT NOT NULL,                    -- RFC 3339
    finished_at TEXT,                            -- NULL while the run is in progress
    root TEXT NOT NULL,                          -- Paths given to the run, space separated
    files INTEGER NOT NULL DEFAULT 0,
    methods INTEGER NOT NULL DEFAULT 0
)
`

const createMethodsTable = `
CREATE TABLE IF NOT EXISTS methods (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id TEXT NOT NULL,
    file_path TEXT NOT NULL,
    name TEXT NOT NULL,                          -- Qualified, e.g. Outer.Inner.run
    start_line INTEGER NOT NULL,
    end_line INTEGER NOT NULL,
    statements INTEGER NOT NULL,
    FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
)
`

const createOpportunitiesTable = `
CREATE TABLE IF NOT EXISTS opportunities (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    method_id INTEGER NOT NULL,
    ordinal INTEGER NOT NULL,                    -- Position in generation order
    level INTEGER NOT NULL,                      -- Coarsening level that produced the span
    start_line INTEGER NOT NULL,
    end_line INTEGER NOT NULL,
    statements INTEGER NOT NULL,
    accepted INTEGER NOT NULL DEFAULT 0,         -- Boolean
    reason TEXT NOT NULL,
    FOREIGN KEY (method_id) REFERENCES methods(id) ON DELETE CASCADE
)
`

var indexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at)`,
	`CREATE INDEX IF NOT EXISTS idx_methods_run ON methods(run_id)`,
	`CREATE INDEX IF NOT EXISTS idx_methods_file ON methods(run_id, file_path)`,
	`CREATE INDEX IF NOT EXISTS idx_opportunities_method ON opportunities(method_id, ordinal)`,
}
