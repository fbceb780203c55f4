package realtime

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"
)

// Event is a fire-and-forget notification. Payload is the serialized JSON
// every subscriber receives; there is no buffering or replay.
type Event struct {
	Kind    string
	Payload []byte
}

// Handler receives published events. Handlers run synchronously on the
// publisher's goroutine and must hand off quickly.
type Handler func(event Event)

type subscriber struct {
	id      uint64
	handler Handler
}

// Broadcaster fans events out to every live viewer connection. It is an
// explicit registry owned by the server, injected into whatever publishes
// layout changes, rather than package-level state.
type Broadcaster struct {
	logger zerolog.Logger

	mu     sync.Mutex
	nextID uint64
	subs   []subscriber
}

// NewBroadcaster creates an empty broadcaster.
func NewBroadcaster(logger zerolog.Logger) *Broadcaster {
	return &Broadcaster{logger: logger}
}

// Subscribe registers a handler and returns its unsubscribe function.
// The handler only sees events published after this call. Unsubscribing
// twice is a no-op.
func (b *Broadcaster) Subscribe(handler Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscriber{id: id, handler: handler})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, s := range b.subs {
			if s.id == id {
				b.subs = append(b.subs[:i], b.subs[i+1:]...)
				return
			}
		}
	}
}

// Publish serializes data once and delivers it to every currently
// registered handler in registration order. With no subscribers the event
// is dropped. A panicking handler is isolated: it is logged and the
// remaining handlers still receive the event.
func (b *Broadcaster) Publish(kind string, data any) {
	payload, err := json.Marshal(data)
	if err != nil {
		b.logger.Error().Err(err).Str("event", kind).Msg("Failed to encode broadcast payload")
		return
	}

	b.mu.Lock()
	snapshot := make([]subscriber, len(b.subs))
	copy(snapshot, b.subs)
	b.mu.Unlock()

	event := Event{Kind: kind, Payload: payload}
	for _, s := range snapshot {
		b.deliver(s, event)
	}
}

// Subscribers reports the number of currently attached handlers.
func (b *Broadcaster) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

func (b *Broadcaster) deliver(s subscriber, event Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error().
				Interface("panic", r).
				Str("event", event.Kind).
				Msg("Broadcast handler panicked")
		}
	}()
	s.handler(event)
}
