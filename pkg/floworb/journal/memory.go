package journal

import (
	"sync"
)

// MemoryStore is an in-memory journal. Data is lost when the process exits.
type MemoryStore struct {
	mu      sync.RWMutex
	records []Record
	byRun   map[string]int // runID -> index into records
	seq     int64
	closed  bool
}

// NewMemoryStore creates an empty in-memory journal.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byRun: make(map[string]int),
	}
}

// Append implements Store.
func (m *MemoryStore) Append(rec Record) (Record, error) {
	if rec.RunID == "" {
		return Record{}, ErrMissingRunID
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return Record{}, ErrStoreClosed
	}

	if i, ok := m.byRun[rec.RunID]; ok {
		m.records = append(m.records[:i], m.records[i+1:]...)
		m.reindexLocked()
	}

	m.seq++
	rec.Sequence = m.seq
	m.byRun[rec.RunID] = len(m.records)
	m.records = append(m.records, rec)
	return rec, nil
}

// Get implements Store.
func (m *MemoryStore) Get(runID string) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return Record{}, ErrStoreClosed
	}
	i, ok := m.byRun[runID]
	if !ok {
		return Record{}, ErrNotFound
	}
	return m.records[i], nil
}

// List implements Store.
func (m *MemoryStore) List(nodeID string, limit int) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	out := []Record{}
	for i := len(m.records) - 1; i >= 0; i-- {
		if m.records[i].NodeID != nodeID {
			continue
		}
		out = append(out, m.records[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// DeleteNode implements Store.
func (m *MemoryStore) DeleteNode(nodeID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	kept := m.records[:0]
	for _, rec := range m.records {
		if rec.NodeID != nodeID {
			kept = append(kept, rec)
		}
	}
	m.records = kept
	m.reindexLocked()
	return nil
}

func (m *MemoryStore) reindexLocked() {
	m.byRun = make(map[string]int, len(m.records))
	for i, rec := range m.records {
		m.byRun[rec.RunID] = i
	}
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

var _ Store = (*MemoryStore)(nil)
