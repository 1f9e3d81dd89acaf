// Package history records integration executions in a local SQLite database.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	_ "modernc.org/sqlite" // Register the sqlite database/sql driver.
)

const defaultLimit = 50

// Entry is one integration execution.
type Entry struct {
	ID              string
	IntegrationID   int64
	IntegrationName string
	ItemID          int64
	ItemURL         string
	ItemTitle       string
	Status          int
	OK              bool
	Detail          string
	CreatedAt       time.Time
}

// Query filters Recent.
type Query struct {
	Limit      int
	FailedOnly bool
}

// Store is a SQLite-backed execution log. It is safe for concurrent use.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating if needed) the history database at path.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("history path is empty")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create history dir: %w", err)
		}
	}

	dsn := path + "?_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if path != ":memory:" {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL;"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("enable WAL mode: %w", err)
		}
	}

	s := &Store{db: db, now: time.Now}
	if err := s.init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS executions (
	id TEXT PRIMARY KEY,
	integration_id INTEGER NOT NULL,
	integration_name TEXT NOT NULL,
	item_id INTEGER NOT NULL,
	item_url TEXT NOT NULL,
	item_title TEXT NOT NULL,
	status INTEGER NOT NULL,
	ok INTEGER NOT NULL,
	detail TEXT NOT NULL,
	created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS executions_created_at ON executions(created_at DESC);
`
	if _, err := s.db.ExecContext(context.Background(), schema); err != nil {
		return fmt.Errorf("initialize schema: %w", err)
	}
	return nil
}

// Close releases the database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record stores e, assigning an id and timestamp when they are unset.
func (s *Store) Record(ctx context.Context, e Entry) error {
	if e.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("generate entry id: %w", err)
		}
		e.ID = id.String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now()
	}

	_, err := s.db.ExecContext(ctx, `
INSERT INTO executions (id, integration_id, integration_name, item_id, item_url, item_title, status, ok, detail, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, e.ID, e.IntegrationID, e.IntegrationName, e.ItemID, e.ItemURL, e.ItemTitle, e.Status, boolInt(e.OK), e.Detail, e.CreatedAt.UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("insert execution: %w", err)
	}
	return nil
}

// Recent returns entries newest first.
func (s *Store) Recent(ctx context.Context, q Query) ([]Entry, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	query := `
SELECT id, integration_id, integration_name, item_id, item_url, item_title, status, ok, detail, created_at
FROM executions`
	if q.FailedOnly {
		query += `
WHERE ok = 0`
	}
	query += `
ORDER BY created_at DESC, id DESC
LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query executions: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e       Entry
			ok      int
			created int64
		)
		if err := rows.Scan(&e.ID, &e.IntegrationID, &e.IntegrationName, &e.ItemID, &e.ItemURL, &e.ItemTitle, &e.Status, &ok, &e.Detail, &created); err != nil {
			return nil, fmt.Errorf("scan execution: %w", err)
		}
		e.OK = ok != 0
		e.CreatedAt = time.UnixMilli(created).UTC()
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate executions: %w", err)
	}
	return entries, nil
}

// Prune deletes entries older than before and returns how many were removed.
func (s *Store) Prune(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM executions WHERE created_at < ?`, before.UTC().UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("prune executions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune executions: %w", err)
	}
	return n, nil
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
