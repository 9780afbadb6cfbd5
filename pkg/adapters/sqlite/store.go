// Package sqlite provides a SnapshotStore backed by an embedded SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/ticketflow/pkg/domain"
	_ "modernc.org/sqlite"
)

const schema = `CREATE TABLE IF NOT EXISTS sessions (
    session_id TEXT PRIMARY KEY,
    current TEXT NOT NULL,
    trace TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

// Store implements ports.SnapshotStore on top of SQLite.
// The trace is stored as a JSON array.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies the schema.
// Use ":memory:" for a throwaway database.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite: %w", err)
	}
	// A single connection serialises writers and keeps ":memory:" databases alive.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Save upserts the snapshot of a session.
func (s *Store) Save(ctx context.Context, sessionID string, snap *domain.Snapshot) error {
	trace, err := json.Marshal(snap.Trace)
	if err != nil {
		return fmt.Errorf("marshaling trace: %w", err)
	}
	updated := snap.UpdatedAt
	if updated.IsZero() {
		updated = time.Now()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (session_id, current, trace, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			current = excluded.current,
			trace = excluded.trace,
			updated_at = excluded.updated_at`,
		sessionID, string(snap.Current), string(trace),
		updated.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("upserting session: %w", err)
	}
	return nil
}

// Load reads the snapshot of a session.
func (s *Store) Load(ctx context.Context, sessionID string) (*domain.Snapshot, error) {
	var current, trace, updated string
	err := s.db.QueryRowContext(ctx,
		`SELECT current, trace, updated_at FROM sessions WHERE session_id = ?`, sessionID).
		Scan(&current, &trace, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("querying session: %w", err)
	}

	snap := &domain.Snapshot{SessionID: sessionID, Current: domain.State(current)}
	if err := json.Unmarshal([]byte(trace), &snap.Trace); err != nil {
		return nil, fmt.Errorf("decoding trace: %w", err)
	}
	if snap.UpdatedAt, err = time.Parse(time.RFC3339Nano, updated); err != nil {
		return nil, fmt.Errorf("decoding updated_at: %w", err)
	}
	return snap, nil
}

// Delete removes the session row.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// List returns the stored session IDs, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT session_id FROM sessions ORDER BY session_id`)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	defer rows.Close()

	sessions := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		sessions = append(sessions, id)
	}
	return sessions, rows.Err()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
