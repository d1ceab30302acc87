package journal

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SQLiteStore persists run records to SQLite.
// It is suitable for single-process use.
type SQLiteStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

// NewSQLiteStore opens or creates a journal at path.
// Use ":memory:" for a throwaway database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// A single connection keeps ":memory:" databases alive across calls.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			sequence INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL UNIQUE,
			node_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			status TEXT NOT NULL,
			error TEXT NOT NULL DEFAULT '',
			category TEXT NOT NULL DEFAULT '',
			image_count INTEGER NOT NULL DEFAULT 0,
			prompt_count INTEGER NOT NULL DEFAULT 0,
			duration_ns INTEGER NOT NULL DEFAULT 0,
			started_at TEXT NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}

	if _, err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_runs_node_id
		ON runs(node_id, sequence)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create index: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Append implements Store. Appending an existing run id replaces it
// and moves it to the end.
func (s *SQLiteStore) Append(rec Record) (Record, error) {
	if rec.RunID == "" {
		return Record{}, ErrMissingRunID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return Record{}, ErrStoreClosed
	}

	res, err := s.db.Exec(`
		INSERT OR REPLACE INTO runs
			(run_id, node_id, kind, status, error, category, image_count, prompt_count, duration_ns, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.RunID, rec.NodeID, rec.Kind, rec.Status, rec.Error, rec.Category,
		rec.ImageCount, rec.PromptCount, int64(rec.Duration),
		rec.StartedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return Record{}, fmt.Errorf("append run: %w", err)
	}

	seq, err := res.LastInsertId()
	if err != nil {
		return Record{}, fmt.Errorf("read sequence: %w", err)
	}
	rec.Sequence = seq
	return rec, nil
}

// Get implements Store.
func (s *SQLiteStore) Get(runID string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return Record{}, ErrStoreClosed
	}

	row := s.db.QueryRow(`
		SELECT sequence, run_id, node_id, kind, status, error, category,
		       image_count, prompt_count, duration_ns, started_at
		FROM runs WHERE run_id = ?
	`, runID)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("get run: %w", err)
	}
	return rec, nil
}

// List implements Store.
func (s *SQLiteStore) List(nodeID string, limit int) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}

	rows, err := s.db.Query(`
		SELECT sequence, run_id, node_id, kind, status, error, category,
		       image_count, prompt_count, duration_ns, started_at
		FROM runs
		WHERE node_id = ?
		ORDER BY sequence DESC
		LIMIT ?
	`, nodeID, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return records, nil
}

// DeleteNode implements Store.
func (s *SQLiteStore) DeleteNode(nodeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	if _, err := s.db.Exec(`DELETE FROM runs WHERE node_id = ?`, nodeID); err != nil {
		return fmt.Errorf("delete node runs: %w", err)
	}
	return nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (Record, error) {
	var (
		rec        Record
		durationNs int64
		startedAt  string
	)
	err := sc.Scan(&rec.Sequence, &rec.RunID, &rec.NodeID, &rec.Kind, &rec.Status,
		&rec.Error, &rec.Category, &rec.ImageCount, &rec.PromptCount, &durationNs, &startedAt)
	if err != nil {
		return Record{}, err
	}
	rec.Duration = time.Duration(durationNs)
	rec.StartedAt, _ = time.Parse(time.RFC3339Nano, startedAt)
	return rec, nil
}

var _ Store = (*SQLiteStore)(nil)
