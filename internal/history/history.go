// Package history keeps an SQLite journal of changes made to the tracked
// feed list. The JSON data file stays the source of truth; the journal only
// records what happened to it.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lepinkainen/feedtrack/pkg/filesystem"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// DefaultDBFile is the journal file used when no path is configured
const DefaultDBFile = "feedtrack.db"

// Action describes what happened to a tracked feed
type Action string

// Journal actions
const (
	ActionAdded   Action = "added"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

// Event is one journal row
type Event struct {
	ID        int64
	Action    Action
	FeedTitle string
	EntryName string
	EntryLink string
	CreatedAt time.Time
}

// Journal wraps the SQLite database holding the events table
type Journal struct {
	db     *sql.DB
	mu     sync.RWMutex
	dbPath string
}

// Open creates or opens the journal at dbPath
func Open(dbPath string) (*Journal, error) {
	if dbPath == "" {
		dbPath = DefaultDBFile
	}

	if err := filesystem.EnsureDirectoryExists(dbPath); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",   // concurrent invocations read while one writes
		"PRAGMA busy_timeout=5000",  // 5 second timeout for lock contention
		"PRAGMA synchronous=NORMAL", // WAL makes NORMAL safe against corruption
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			closeDB(db)
			return nil, fmt.Errorf("failed to set pragma %q: %w", pragma, err)
		}
	}

	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		closeDB(db)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	j := &Journal{
		db:     db,
		dbPath: dbPath,
	}

	if err := j.createSchema(); err != nil {
		closeDB(db)
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	slog.Debug("History journal initialized", "path", dbPath)
	return j, nil
}

func closeDB(db *sql.DB) {
	if err := db.Close(); err != nil {
		slog.Error("Failed to close database", "error", err)
	}
}

func (j *Journal) createSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		action TEXT NOT NULL,
		feed_title TEXT NOT NULL,
		entry_name TEXT DEFAULT '',
		entry_link TEXT DEFAULT '',
		created_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_created ON events(created_at);
	`

	_, err := j.db.Exec(schema)
	return err
}

// Path returns the database file path
func (j *Journal) Path() string {
	return j.dbPath
}

// Close closes the database connection
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.db != nil {
		return j.db.Close()
	}
	return nil
}

// Record appends an event. A zero CreatedAt is replaced with the current time.
func (j *Journal) Record(ctx context.Context, event Event) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	_, err := j.db.ExecContext(ctx, `
		INSERT INTO events (action, feed_title, entry_name, entry_link, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		string(event.Action), event.FeedTitle, event.EntryName, event.EntryLink, event.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to record %s event for %q: %w", event.Action, event.FeedTitle, err)
	}

	slog.Debug("Recorded history event", "action", event.Action, "feed", event.FeedTitle)
	return nil
}

// Recent returns up to limit events, newest first
func (j *Journal) Recent(ctx context.Context, limit int) ([]Event, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}

	rows, err := j.db.QueryContext(ctx, `
		SELECT id, action, feed_title, entry_name, entry_link, created_at
		FROM events
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []Event
	for rows.Next() {
		var (
			event  Event
			action string
		)
		if err := rows.Scan(&event.ID, &action, &event.FeedTitle, &event.EntryName, &event.EntryLink, &event.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		event.Action = Action(action)
		events = append(events, event)
	}

	return events, rows.Err()
}
