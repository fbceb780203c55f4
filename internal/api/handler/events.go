package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Rrens/deskmap/internal/realtime"
	"github.com/rs/zerolog/log"
)

const (
	eventBufferSize = 16
	pingInterval    = 15 * time.Second
)

// EventsHandler streams layout change notifications over SSE
type EventsHandler struct {
	broadcaster *realtime.Broadcaster
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(broadcaster *realtime.Broadcaster) *EventsHandler {
	return &EventsHandler{broadcaster: broadcaster}
}

// Stream attaches a viewer connection to the broadcaster. Events are
// buffered per connection; a viewer that cannot keep up loses events
// rather than blocking the publisher.
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	events := make(chan realtime.Event, eventBufferSize)
	unsubscribe := h.broadcaster.Subscribe(func(event realtime.Event) {
		select {
		case events <- event:
		default:
			log.Warn().Str("event", event.Kind).Msg("Viewer connection too slow, event dropped")
		}
	})
	defer unsubscribe()

	fmt.Fprint(w, "event: connected\ndata: {}\n\n")
	flusher.Flush()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case event := <-events:
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Kind, event.Payload)
			flusher.Flush()
		case <-ticker.C:
			fmt.Fprint(w, "event: ping\ndata: {}\n\n")
			flusher.Flush()
		}
	}
}
