package events

import (
	"log/slog"
	"sync"
)

// Type identifies a library event
type Type string

const (
	TypeSyncCompleted    Type = "library:sync-completed"
	TypeImageResolved    Type = "library:image-resolved"
	TypeDescriptionReady Type = "library:description-ready"
	TypeLibraryReset     Type = "library:reset"
)

// Event is one notification emitted by the library service. AppID is zero for
// collection-wide events.
type Event struct {
	Type  Type `json:"type"`
	AppID int  `json:"appId,omitempty"`
}

// Bus is an in-process publish/subscribe channel for library events. Delivery
// is best-effort: a subscriber that stops draining its channel loses events
// rather than blocking the publisher.
type Bus struct {
	mu     sync.RWMutex
	subs   []chan Event
	logger *slog.Logger
}

// NewBus creates an event bus
func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{logger: logger}
}

// Subscribe registers a new listener and returns its receive channel
func (b *Bus) Subscribe() <-chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, 32)
	b.subs = append(b.subs, ch)
	return ch
}

// Publish delivers an event to every subscriber without blocking
func (b *Bus) Publish(evt Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subs {
		select {
		case ch <- evt:
		default:
			b.logger.Debug("dropping event for slow subscriber", "type", evt.Type, "appId", evt.AppID)
		}
	}
}

// Close closes every subscriber channel
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs {
		close(ch)
	}
	b.subs = nil
}
