package notify

import (
	"context"
	"sync"
	"time"
)

// Recorder keeps recent notifications so they can be polled.
// Expired entries are pruned on read and write.
type Recorder struct {
	mu    sync.Mutex
	items []Notification
	limit int
	now   func() time.Time
}

// NewRecorder creates a Recorder holding at most limit entries.
// A limit of zero or less means 100.
func NewRecorder(limit int) *Recorder {
	if limit <= 0 {
		limit = 100
	}
	return &Recorder{limit: limit, now: time.Now}
}

// Handle stores n. Its signature matches Handler so it can subscribe to a Bus.
func (r *Recorder) Handle(_ context.Context, n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.pruneLocked()
	r.items = append(r.items, n)
	if over := len(r.items) - r.limit; over > 0 {
		r.items = r.items[over:]
	}
}

// Notify implements Notifier by storing n directly.
func (r *Recorder) Notify(ctx context.Context, n Notification) error {
	r.Handle(ctx, n)
	return nil
}

// Recent returns unexpired notifications, oldest first.
func (r *Recorder) Recent() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.pruneLocked()
	out := make([]Notification, len(r.items))
	copy(out, r.items)
	return out
}

func (r *Recorder) pruneLocked() {
	now := r.now()
	kept := r.items[:0]
	for _, n := range r.items {
		if !n.Expired(now) {
			kept = append(kept, n)
		}
	}
	r.items = kept
}

var _ Notifier = (*Recorder)(nil)
