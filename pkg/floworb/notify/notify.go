// Package notify carries transient user-facing notifications from the
// execution engine to whoever presents them.
//
// The engine publishes Notifications on a Bus. Subscribers receive them
// asynchronously; a Recorder keeps the recent ones until their TTL lapses.
package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Level is the severity of a notification.
type Level string

// Notification levels.
const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// DefaultTTL is how long a notification stays visible.
const DefaultTTL = 4 * time.Second

// Notification is a short message about a node.
type Notification struct {
	ID        string        `json:"id"`
	Level     Level         `json:"level"`
	Message   string        `json:"message"`
	NodeID    string        `json:"nodeId,omitempty"`
	RunID     string        `json:"runId,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
	TTL       time.Duration `json:"ttl"`
}

// New creates a notification with a fresh id and the default TTL.
func New(level Level, nodeID, message string) Notification {
	return Notification{
		ID:        uuid.NewString(),
		Level:     level,
		Message:   message,
		NodeID:    nodeID,
		CreatedAt: time.Now(),
		TTL:       DefaultTTL,
	}
}

// Expired reports whether the notification's TTL has elapsed at now.
func (n Notification) Expired(now time.Time) bool {
	return n.TTL > 0 && now.After(n.CreatedAt.Add(n.TTL))
}

// Notifier publishes notifications.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, n Notification) error

// Notify implements Notifier.
func (f NotifierFunc) Notify(ctx context.Context, n Notification) error {
	return f(ctx, n)
}

// Discard is a Notifier that drops everything.
var Discard Notifier = NotifierFunc(func(context.Context, Notification) error { return nil })
