package notify

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
)

// ErrBusClosed indicates Notify was called after Close.
var ErrBusClosed = errors.New("notification bus closed")

// Handler receives delivered notifications.
type Handler func(ctx context.Context, n Notification)

// Subscription is an active subscription on a Bus.
type Subscription interface {
	// Unsubscribe stops delivery and releases the subscription.
	Unsubscribe()
}

// BusConfig configures bus behavior.
type BusConfig struct {
	// BufferSize is the channel buffer per subscription.
	// Default: 64
	BufferSize int

	// NonBlocking drops notifications when a subscriber's buffer is full
	// instead of blocking the publisher.
	// Default: false
	NonBlocking bool

	// OnDrop is called when a notification is dropped in non-blocking mode.
	OnDrop func(n Notification, subscriberID string)
}

// DefaultBusConfig provides reasonable defaults.
var DefaultBusConfig = BusConfig{
	BufferSize: 64,
}

// Bus is an in-memory pub/sub fan-out of notifications. It implements Notifier.
type Bus struct {
	config BusConfig

	mu     sync.RWMutex
	subs   map[string]*subscription
	nextID atomic.Int64

	closed  atomic.Bool
	closeCh chan struct{}
}

// NewBus creates a notification bus.
func NewBus(config BusConfig) *Bus {
	if config.BufferSize <= 0 {
		config.BufferSize = DefaultBusConfig.BufferSize
	}
	return &Bus{
		config:  config,
		subs:    make(map[string]*subscription),
		closeCh: make(chan struct{}),
	}
}

type subscription struct {
	id      string
	levels  map[Level]bool // empty = all levels
	handler Handler
	events  chan Notification
	done    chan struct{}
	once    sync.Once
	bus     *Bus
}

// Notify delivers n to every subscriber whose levels match.
func (b *Bus) Notify(ctx context.Context, n Notification) error {
	if b.closed.Load() {
		return ErrBusClosed
	}

	b.mu.RLock()
	subs := make([]*subscription, 0, len(b.subs))
	for _, s := range b.subs {
		if s.matches(n.Level) {
			subs = append(subs, s)
		}
	}
	b.mu.RUnlock()

	for _, s := range subs {
		if b.config.NonBlocking {
			select {
			case s.events <- n:
			default:
				if b.config.OnDrop != nil {
					b.config.OnDrop(n, s.id)
				}
			}
			continue
		}

		select {
		case s.events <- n:
		case <-s.done:
		case <-ctx.Done():
			return ctx.Err()
		case <-b.closeCh:
			return ErrBusClosed
		}
	}
	return nil
}

// Subscribe registers handler for the given levels. No levels means all.
// Returns nil if the bus is closed.
func (b *Bus) Subscribe(handler Handler, levels ...Level) Subscription {
	if b.closed.Load() {
		return nil
	}

	s := &subscription{
		id:      strconv.FormatInt(b.nextID.Add(1), 10),
		levels:  make(map[Level]bool, len(levels)),
		handler: handler,
		events:  make(chan Notification, b.config.BufferSize),
		done:    make(chan struct{}),
		bus:     b,
	}
	for _, l := range levels {
		s.levels[l] = true
	}

	b.mu.Lock()
	b.subs[s.id] = s
	b.mu.Unlock()

	go s.process()
	return s
}

// Close stops all subscriptions. It is safe to call more than once.
func (b *Bus) Close() error {
	if !b.closed.CompareAndSwap(false, true) {
		return nil
	}
	close(b.closeCh)

	b.mu.Lock()
	defer b.mu.Unlock()
	for id, s := range b.subs {
		s.stop()
		delete(b.subs, id)
	}
	return nil
}

func (s *subscription) matches(l Level) bool {
	return len(s.levels) == 0 || s.levels[l]
}

func (s *subscription) process() {
	for {
		select {
		case n := <-s.events:
			s.handler(context.Background(), n)
		case <-s.done:
			return
		}
	}
}

func (s *subscription) stop() {
	s.once.Do(func() { close(s.done) })
}

// Unsubscribe implements Subscription.
func (s *subscription) Unsubscribe() {
	s.bus.mu.Lock()
	delete(s.bus.subs, s.id)
	s.bus.mu.Unlock()
	s.stop()
}

var _ Notifier = (*Bus)(nil)
