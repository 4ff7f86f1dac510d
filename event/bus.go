package event

import (
	"sync"

	"go.uber.org/zap"
)

// Handler processes published events
// Handler values must be comparable (pointer receivers); subscription identity
// is interface equality
type Handler interface {
	HandleEvent(ev Event)
}

// Bus is a typed publish/subscribe dispatcher
//
// Architecture:
//   - Handlers for one event type are invoked in subscription order
//   - Subscriber lists are immutable snapshots, replaced on mutation
//   - Publish iterates the snapshot taken at call time, so subscribe and
//     unsubscribe from inside a handler affect only subsequent publishes
//   - A panicking handler is logged and isolated; remaining handlers still run
//
// The lock guards the handler table only and is never held during callbacks
type Bus struct {
	mu       sync.Mutex
	handlers map[EventType][]Handler
	logger   *zap.Logger
}

// NewBus creates an empty bus. A nil logger defaults to a no-op logger
func NewBus(logger *zap.Logger) *Bus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bus{
		handlers: make(map[EventType][]Handler),
		logger:   logger,
	}
}

// Subscribe registers a handler for an event type
// Idempotent: registering the same handler twice stores it once
func (b *Bus) Subscribe(t EventType, h Handler) {
	if h == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	current := b.handlers[t]
	for _, existing := range current {
		if existing == h {
			return
		}
	}

	// Copy-on-write so an in-flight Publish keeps iterating its snapshot
	next := make([]Handler, len(current), len(current)+1)
	copy(next, current)
	b.handlers[t] = append(next, h)
}

// Unsubscribe removes a handler for an event type
// Unknown handlers are a no-op
func (b *Bus) Unsubscribe(t EventType, h Handler) {
	if h == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	current := b.handlers[t]
	for i, existing := range current {
		if existing == h {
			next := make([]Handler, 0, len(current)-1)
			next = append(next, current[:i]...)
			next = append(next, current[i+1:]...)
			if len(next) == 0 {
				delete(b.handlers, t)
			} else {
				b.handlers[t] = next
			}
			return
		}
	}
}

// Publish delivers the event to every handler subscribed at call time
// Handler panics are recovered, logged, and never reach the publisher
func (b *Bus) Publish(ev Event) {
	b.mu.Lock()
	snapshot := b.handlers[ev.Type]
	b.mu.Unlock()

	for _, h := range snapshot {
		b.invoke(h, ev)
	}
}

func (b *Bus) invoke(h Handler, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked",
				zap.Stringer("event", ev.Type),
				zap.Any("panic", r),
				zap.Stack("stack"),
			)
		}
	}()
	h.HandleEvent(ev)
}

// SubscriberCount returns the number of handlers for an event type
func (b *Bus) SubscriberCount(t EventType) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.handlers[t])
}

// ClearAll drops every subscription
// Reset hook for tests and bootstrap only: it silently removes unrelated
// subscribers, so it must not run during ordinary per-scene teardown
func (b *Bus) ClearAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = make(map[EventType][]Handler)
}
