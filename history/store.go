// Package history keeps a local log of connection lifecycle events.
// Events are appended on every state transition and on failed
// attempts, and are queryable from the CLI. The log is informational
// only: nothing in the connection lifecycle reads it back.
package history

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/steve-ongera/dbswitch/common"
)

// Event types recorded in the log.
const (
	EventConnected    = "connected"
	EventDisconnected = "disconnected"
	EventOpenFailed   = "open-failed"
	EventCloseFailed  = "close-failed"
)

// Event is one recorded lifecycle event.
type Event struct {
	ID         int64
	TargetID   string
	TargetName string
	Type       string
	// Detail carries the error text for failure events, empty otherwise.
	Detail string
	At     time.Time
}

const schema = `
CREATE TABLE IF NOT EXISTS events (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	target_id   TEXT NOT NULL,
	target_name TEXT NOT NULL,
	type        TEXT NOT NULL,
	detail      TEXT NOT NULL DEFAULT '',
	at          INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_events_at ON events(at);
`

// Store is the sqlite-backed event log.
type Store struct {
	db *sql.DB
}

// DefaultPath returns the standard location of the history database.
func DefaultPath() (string, error) {
	dataDir, err := common.GetDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, common.HistoryFileName), nil
}

// Open opens (creating if needed) the event log at the given path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, common.WrapError(err, "failed to create history directory")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, common.WrapError(err, "failed to open history database")
	}

	// sqlite allows one writer; a second connection would just block.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, common.WrapError(err, "failed to initialize history schema")
	}

	return &Store{db: db}, nil
}

// Record appends an event to the log. A zero At is filled with the
// current time.
func (s *Store) Record(ctx context.Context, event Event) error {
	if event.At.IsZero() {
		event.At = time.Now()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO events (target_id, target_name, type, detail, at) VALUES (?, ?, ?, ?, ?)`,
		event.TargetID, event.TargetName, event.Type, event.Detail, event.At.Unix())
	if err != nil {
		return common.WrapError(err, "failed to record event")
	}
	return nil
}

// Recent returns up to limit events, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, target_id, target_name, type, detail, at FROM events ORDER BY at DESC, id DESC LIMIT ?`,
		limit)
	if err != nil {
		return nil, common.WrapError(err, "failed to query events")
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		var at int64
		if err := rows.Scan(&e.ID, &e.TargetID, &e.TargetName, &e.Type, &e.Detail, &at); err != nil {
			return nil, common.WrapError(err, "failed to scan event")
		}
		e.At = time.Unix(at, 0)
		events = append(events, e)
	}

	return events, rows.Err()
}

// PruneBefore deletes events older than the cutoff and returns how
// many were removed.
func (s *Store) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM events WHERE at < ?`, cutoff.Unix())
	if err != nil {
		return 0, common.WrapError(err, "failed to prune events")
	}
	return res.RowsAffected()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
