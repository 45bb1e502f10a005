// Package journal persists emitted report lines to a sqlite audit log.
// It is an optional tap on the output path, never recoverable book state;
// the canonical run keeps no persisted state at all.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ismaiel54/book-pricer/internal/book"
	"github.com/ismaiel54/book-pricer/internal/pricer"
)

// Journal appends emitted quotes to a sqlite table keyed by session.
type Journal struct {
	db *sql.DB
}

// Entry is one journalled report line.
type Entry struct {
	ID                int64
	SessionID         string
	EventTimestamp    int64
	Action            string
	Value             string
	CreatedUnixMillis int64
}

// Open creates or opens the journal database
func Open(path string) (*Journal, error) {
	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	j := &Journal{db: db}

	// Run migrations
	if err := j.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return j, nil
}

// migrate creates the necessary tables
func (j *Journal) migrate() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS quote_reports (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			event_ts INTEGER NOT NULL,
			action TEXT NOT NULL,
			value TEXT NOT NULL,
			created_unix_millis INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_quote_reports_session
			ON quote_reports(session_id)`,
	}

	for _, query := range queries {
		if _, err := j.db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute migration: %w", err)
		}
	}

	return nil
}

// Append records one emitted quote for a session. The value column carries
// the formatted fixed-point total, or "NA" for a withdrawal, exactly as it
// appeared on the output stream.
func (j *Journal) Append(ctx context.Context, sessionID string, q pricer.Quote, precision int) error {
	action := "S"
	if q.Side == book.Bid {
		action = "B"
	}
	value := "NA"
	if q.Marketable {
		value = book.FormatFixed(q.Value, precision)
	}

	_, err := j.db.ExecContext(ctx,
		`INSERT INTO quote_reports (session_id, event_ts, action, value, created_unix_millis)
		 VALUES (?, ?, ?, ?, ?)`,
		sessionID, q.Timestamp, action, value, time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to append quote report: %w", err)
	}
	return nil
}

// ListSession returns a session's journalled reports in emission order.
func (j *Journal) ListSession(ctx context.Context, sessionID string) ([]Entry, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT id, session_id, event_ts, action, value, created_unix_millis
		 FROM quote_reports WHERE session_id = ? ORDER BY id`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query quote reports: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.SessionID, &e.EventTimestamp, &e.Action, &e.Value, &e.CreatedUnixMillis); err != nil {
			return nil, fmt.Errorf("failed to scan quote report: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close closes the underlying database
func (j *Journal) Close() error {
	return j.db.Close()
}
