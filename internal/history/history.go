// Package history keeps a local, display-only audit log of successful
// commits. The commit engine never reads it (every commit decision is made
// against a fresh remote snapshot), but it lets the user see what this client
// pushed and when, even offline.
package history

import (
	"database/sql"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"

	"tracktray/internal/harvest"

	_ "modernc.org/sqlite"
)

// Record is one audited commit.
type Record struct {
	ID          string
	EntryID     int64
	ProjectName string
	TaskName    string
	Hours       float64
	Notes       string
	CommittedAt time.Time
}

// Store persists commit records in SQLite (modernc driver, no CGO).
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open creates or opens the history database at dbPath.
func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}

	// SQLite allows one writer; a single connection serializes access
	// through the pool instead of surfacing "database is locked".
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	const schema = `
CREATE TABLE IF NOT EXISTS commits (
	id           TEXT PRIMARY KEY,
	entry_id     INTEGER NOT NULL,
	project_name TEXT NOT NULL,
	task_name    TEXT NOT NULL,
	hours        REAL NOT NULL,
	notes        TEXT NOT NULL DEFAULT '',
	committed_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_commits_committed_at ON commits(committed_at);
`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply history schema: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

// DefaultPath returns the default history database location.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".local", "share", "tracktray", "history.db"), nil
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// RecordCommit appends an audit row for a committed entry. Failures are
// logged and never block the commit path.
func (s *Store) RecordCommit(entry harvest.TimeEntry) {
	now := s.now().UTC()
	id := ulid.MustNew(ulid.Timestamp(now), rand.New(rand.NewSource(now.UnixNano()))).String()
	_, err := s.db.Exec(
		`INSERT INTO commits (id, entry_id, project_name, task_name, hours, notes, committed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, entry.ID, entry.ProjectName, entry.TaskName, entry.Hours, entry.Notes,
		now.Format(time.RFC3339),
	)
	if err != nil {
		log.Printf("history: record commit: %v", err)
	}
}

// Recent returns up to limit records, newest first.
func (s *Store) Recent(limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(
		`SELECT id, entry_id, project_name, task_name, hours, notes, committed_at
		 FROM commits ORDER BY committed_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []Record
	for rows.Next() {
		var r Record
		var committedAt string
		if err := rows.Scan(&r.ID, &r.EntryID, &r.ProjectName, &r.TaskName, &r.Hours, &r.Notes, &committedAt); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		r.CommittedAt, _ = time.Parse(time.RFC3339, committedAt)
		records = append(records, r)
	}
	return records, rows.Err()
}
