package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/studiowebux/usertabs/internal/migrations"
	"github.com/studiowebux/usertabs/internal/types"
)

const timestampFormat = "2006-01-02 15:04:05.000"

// Manager stores one row per completed user API call
type Manager struct {
	db *sql.DB
}

func NewManager(dbPath string) (*Manager, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to history database: %w", err)
	}

	if err := migrations.Run(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Manager{db: db}, nil
}

// Record saves a completed call
func (m *Manager) Record(ctx context.Context, rec types.CallRecord) error {
	query := `
		INSERT INTO requests (
			timestamp, operation, method, url, event, user_id, status, duration_ms, error
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	ts := rec.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	_, err := m.db.ExecContext(ctx, query,
		ts.UTC().Format(timestampFormat),
		rec.Operation,
		rec.Method,
		rec.URL,
		nullString(rec.Event),
		nullString(rec.UserID),
		rec.Status,
		rec.Duration,
		nullString(rec.Error),
	)
	if err != nil {
		return fmt.Errorf("failed to save request entry: %w", err)
	}
	return nil
}

// List returns records matching f, newest first
func (m *Manager) List(ctx context.Context, f Filter) ([]types.CallRecord, error) {
	var (
		where []string
		args  []any
	)
	if f.Operation != "" {
		where = append(where, "operation = ?")
		args = append(args, f.Operation)
	}
	if f.UserID != "" {
		where = append(where, "user_id = ?")
		args = append(args, f.UserID)
	}
	if f.FailedOnly {
		where = append(where, "(error IS NOT NULL OR status < 200 OR status > 299)")
	}

	query := `
		SELECT id, timestamp, operation, method, url, event, user_id, status, duration_ms, error
		FROM requests
	`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY timestamp DESC, id DESC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load request log: %w", err)
	}
	defer rows.Close()

	return m.scanEntries(rows)
}

func (m *Manager) scanEntries(rows *sql.Rows) ([]types.CallRecord, error) {
	var entries []types.CallRecord

	for rows.Next() {
		var (
			rec       types.CallRecord
			timestamp string
			event     sql.NullString
			userID    sql.NullString
			errorMsg  sql.NullString
		)

		err := rows.Scan(
			&rec.ID,
			&timestamp,
			&rec.Operation,
			&rec.Method,
			&rec.URL,
			&event,
			&userID,
			&rec.Status,
			&rec.Duration,
			&errorMsg,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan request entry: %w", err)
		}

		parsed, err := time.ParseInLocation(timestampFormat, timestamp, time.UTC)
		if err != nil {
			// go-sqlite3 may hand DATETIME columns back as RFC3339
			parsed, _ = time.Parse(time.RFC3339Nano, timestamp)
		}
		rec.Timestamp = parsed
		rec.Event = event.String
		rec.UserID = userID.String
		rec.Error = errorMsg.String

		entries = append(entries, rec)
	}

	return entries, rows.Err()
}

// Clear deletes every record
func (m *Manager) Clear(ctx context.Context) error {
	_, err := m.db.ExecContext(ctx, "DELETE FROM requests")
	if err != nil {
		return fmt.Errorf("failed to clear request log: %w", err)
	}
	return nil
}

// GetCount returns the number of stored records
func (m *Manager) GetCount(ctx context.Context) (int, error) {
	var count int
	err := m.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM requests").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get request count: %w", err)
	}
	return count, nil
}

func (m *Manager) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
