// Package migrations creates and upgrades the request log schema.
package migrations

import (
	"database/sql"
	"errors"
	"fmt"
)

// Migration is one schema step, applied in its own transaction
type Migration struct {
	Version int
	Name    string
	Up      string
}

// AllMigrations in ascending version order
var AllMigrations = []Migration{
	{
		Version: 1,
		Name:    "index requests by operation and user_id",
		Up: `
			CREATE INDEX IF NOT EXISTS idx_requests_operation ON requests(operation);
			CREATE INDEX IF NOT EXISTS idx_requests_user_id ON requests(user_id);
		`,
	},
	{
		Version: 2,
		Name:    "index failed calls by status",
		Up: `
			CREATE INDEX IF NOT EXISTS idx_requests_status_timestamp ON requests(status, timestamp DESC);
		`,
	},
}

const requestsTable = `
CREATE TABLE IF NOT EXISTS requests (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp   DATETIME NOT NULL,
	operation   TEXT NOT NULL,
	method      TEXT NOT NULL,
	url         TEXT NOT NULL,
	event       TEXT,
	user_id     TEXT,
	status      INTEGER NOT NULL DEFAULT 0,
	duration_ms INTEGER NOT NULL DEFAULT 0,
	error       TEXT
);
CREATE INDEX IF NOT EXISTS idx_requests_timestamp ON requests(timestamp DESC);
`

const versionsTable = `
CREATE TABLE IF NOT EXISTS schema_migrations (
	version    INTEGER PRIMARY KEY,
	name       TEXT NOT NULL,
	applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// InitSchema creates the requests table. Run calls it first.
func InitSchema(db *sql.DB) error {
	if _, err := db.Exec(requestsTable); err != nil {
		return fmt.Errorf("create requests table: %w", err)
	}
	return nil
}

// Run brings db up to the latest version. Already applied steps are skipped.
func Run(db *sql.DB) error {
	if err := InitSchema(db); err != nil {
		return err
	}
	if _, err := db.Exec(versionsTable); err != nil {
		return fmt.Errorf("create schema_migrations table: %w", err)
	}

	current, err := GetCurrentVersion(db)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	for _, m := range AllMigrations {
		if m.Version <= current {
			continue
		}
		if err := apply(db, m); err != nil {
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Name, err)
		}
	}
	return nil
}

func apply(db *sql.DB, m Migration) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(m.Up); err != nil {
		_ = tx.Rollback()
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version, name) VALUES (?, ?)", m.Version, m.Name); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// GetCurrentVersion returns the highest applied version, 0 for a fresh db
func GetCurrentVersion(db *sql.DB) (int, error) {
	var version int
	err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}
	return version, nil
}
