// Package journal records the outcome of every node run.
//
// The journal is an append-only execution history. It does not store the
// graph itself; nodes and connections stay with their owner.
package journal

import (
	"errors"
	"time"
)

// Record is one finished node run.
type Record struct {
	RunID       string        `json:"runId"`
	NodeID      string        `json:"nodeId"`
	Kind        string        `json:"kind"`
	Status      string        `json:"status"`
	Error       string        `json:"error,omitempty"`
	Category    string        `json:"category,omitempty"`
	ImageCount  int           `json:"imageCount"`
	PromptCount int           `json:"promptCount"`
	Duration    time.Duration `json:"duration"`
	StartedAt   time.Time     `json:"startedAt"`
	Sequence    int64         `json:"sequence"`
}

// Store persists run records.
// Implementations must be safe for concurrent use.
type Store interface {
	// Append stores rec and assigns its Sequence.
	Append(rec Record) (Record, error)

	// Get returns the record for runID.
	// Returns ErrNotFound if no such run was recorded.
	Get(runID string) (Record, error)

	// List returns the records for nodeID, newest first, at most limit.
	// A limit of zero or less means no limit.
	// Returns an empty slice (not error) if the node has no runs.
	List(nodeID string, limit int) ([]Record, error)

	// DeleteNode removes all records for nodeID.
	DeleteNode(nodeID string) error

	// Close releases any resources.
	Close() error
}

// Sentinel errors for journal operations.
var (
	// ErrNotFound indicates a run record doesn't exist.
	ErrNotFound = errors.New("run record not found")

	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("journal store closed")

	// ErrMissingRunID indicates Append was given a record without a run id.
	ErrMissingRunID = errors.New("run record has no run id")
)
