package progress

import (
	"context"
	"log/slog"
	"sync"
)

const defaultSubscriberBuffer = 256

// Bus is the in-process broadcast channel. Each subscriber gets a bounded buffer; when it is
// full the event is dropped for that subscriber rather than stalling the writer.
type Bus struct {
	mu     sync.RWMutex
	subs   map[int]chan Event
	nextID int
	buffer int
	logger *slog.Logger
}

// NewBus creates a bus whose subscribers buffer up to buffer events.
func NewBus(buffer int, logger *slog.Logger) *Bus {
	if buffer <= 0 {
		buffer = defaultSubscriberBuffer
	}
	return &Bus{
		subs:   make(map[int]chan Event),
		buffer: buffer,
		logger: logger.With("component", "progress.bus"),
	}
}

// Subscribe registers a listener. The returned cancel func closes the channel and is safe to
// call more than once.
func (b *Bus) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, b.buffer)

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = ch
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			close(ch)
		})
	}
}

// Publish delivers evt to every current subscriber that has room.
func (b *Bus) Publish(_ context.Context, evt Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for id, ch := range b.subs {
		select {
		case ch <- evt:
		default:
			b.logger.Warn("subscriber buffer full, event dropped", "subscriber", id, "type", evt.Type, "session_id", evt.SessionID)
		}
	}
}

// Subscribers reports the number of listeners.
func (b *Bus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

var _ Publisher = (*Bus)(nil)
