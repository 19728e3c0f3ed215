// Package history records session submissions into SQLite so a session
// can be inspected or replayed later.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ruchy-lang/ruchy/internal/session"
)

const schema = `
CREATE TABLE IF NOT EXISTS entries (
	session_id  TEXT    NOT NULL,
	seq         INTEGER NOT NULL,
	epoch       INTEGER NOT NULL DEFAULT 0,
	source      TEXT    NOT NULL,
	value       TEXT    NOT NULL DEFAULT '',
	error       TEXT    NOT NULL DEFAULT '',
	stdout      TEXT    NOT NULL DEFAULT '',
	duration_ns INTEGER NOT NULL DEFAULT 0,
	created_at  INTEGER NOT NULL,
	PRIMARY KEY (session_id, seq)
);
CREATE INDEX IF NOT EXISTS entries_created ON entries(created_at);
`

// Store is a SQLite-backed session.Recorder.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path. ":memory:" gives
// a private in-memory store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening history %s: %w", path, err)
	}
	// A single connection keeps :memory: databases coherent and serializes
	// writers.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating history schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Record implements session.Recorder. Sequence numbers are unique per
// session; recording one twice is an error.
func (s *Store) Record(ctx context.Context, e session.Entry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO entries (session_id, seq, epoch, source, value, error, stdout, duration_ns, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.SessionID, e.Seq, e.Epoch, e.Source, e.Value, e.Error, e.Stdout, int64(e.Duration), time.Now().UnixNano())
	if err != nil {
		return fmt.Errorf("recording %s#%d: %w", e.SessionID, e.Seq, err)
	}
	return nil
}

// Entries returns the recorded submissions of one session in order.
func (s *Store) Entries(ctx context.Context, sessionID string) ([]session.Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT session_id, seq, epoch, source, value, error, stdout, duration_ns
		 FROM entries WHERE session_id = ? ORDER BY seq`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying entries: %w", err)
	}
	defer rows.Close()

	var out []session.Entry
	for rows.Next() {
		var e session.Entry
		var dur int64
		if err := rows.Scan(&e.SessionID, &e.Seq, &e.Epoch, &e.Source, &e.Value, &e.Error, &e.Stdout, &dur); err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}
		e.Duration = time.Duration(dur)
		out = append(out, e)
	}
	return out, rows.Err()
}

// SessionInfo summarizes one recorded session.
type SessionInfo struct {
	ID        string
	Entries   int
	Failures  int
	StartedAt time.Time
}

// Sessions lists recorded sessions, oldest first.
func (s *Store) Sessions(ctx context.Context) ([]SessionInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT session_id, COUNT(*), SUM(CASE WHEN error != '' THEN 1 ELSE 0 END), MIN(created_at)
		 FROM entries GROUP BY session_id ORDER BY MIN(created_at), session_id`)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionInfo
	for rows.Next() {
		var info SessionInfo
		var started int64
		if err := rows.Scan(&info.ID, &info.Entries, &info.Failures, &started); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		info.StartedAt = time.Unix(0, started)
		out = append(out, info)
	}
	return out, rows.Err()
}
