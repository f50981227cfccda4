package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"nhooyr.io/websocket"
)

// Directory event types pushed to connected dashboards.
const (
	// EventDirectoryLoaded fires when the agent cache is first populated.
	EventDirectoryLoaded = "directory_loaded"

	// EventImportCompleted relays an estia-import run finishing.
	EventImportCompleted = "import_completed"
)

// Event is the payload streamed over /ws.
type Event struct {
	Type     string `json:"type"`
	Source   string `json:"source,omitempty"`   // Winning source name (directory_loaded)
	Agents   int    `json:"agents,omitempty"`   // Cache size after load (directory_loaded)
	RunID    string `json:"run_id,omitempty"`   // Import run identifier (import_completed)
	Imported int    `json:"imported,omitempty"` // Records accepted (import_completed)
}

// subscriberBuffer bounds how far a slow reader may fall behind before
// it is dropped.
const subscriberBuffer = 16

// EventHub fans directory events out to WebSocket subscribers. Unlike a
// request/response handler it owns no agent data: producers (the
// directory load hook, the import event watcher) push typed Events and
// every connected dashboard receives the JSON encoding.
type EventHub struct {
	mu      sync.Mutex
	subs    map[chan []byte]struct{}
	stopped bool
}

// NewEventHub creates an empty hub, ready to serve /ws.
func NewEventHub() *EventHub {
	return &EventHub{subs: make(map[chan []byte]struct{})}
}

// Subscribe registers a listener and returns its channel plus a cancel
// function. The channel is closed on cancel, on Stop, or when the
// subscriber falls subscriberBuffer events behind.
func (h *EventHub) Subscribe() (<-chan []byte, func()) {
	ch := make(chan []byte, subscriberBuffer)

	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if _, ok := h.subs[ch]; ok {
			delete(h.subs, ch)
			close(ch)
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

// Broadcast pushes an event to every subscriber. Subscribers that
// cannot keep up are disconnected rather than blocking the producer.
func (h *EventHub) Broadcast(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("handlers: failed to encode %s event: %v", event.Type, err)
		return
	}

	h.mu.Lock()
	for ch := range h.subs {
		select {
		case ch <- data:
		default:
			delete(h.subs, ch)
			close(ch)
		}
	}
	h.mu.Unlock()
}

// Subscribers returns the current subscriber count.
func (h *EventHub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Stop disconnects every subscriber. Further Subscribe calls return a
// closed channel.
func (h *EventHub) Stop() {
	h.mu.Lock()
	h.stopped = true
	for ch := range h.subs {
		delete(h.subs, ch)
		close(ch)
	}
	h.mu.Unlock()
}

// ServeHTTP upgrades the request to a WebSocket and streams events
// until the subscriber is dropped or the peer goes away.
func (h *EventHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"localhost:*", "127.0.0.1:*"},
	})
	if err != nil {
		log.Printf("handlers: websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	events, cancel := h.Subscribe()
	defer cancel()

	// Reads are drained only to notice the peer disconnecting.
	go func() {
		for {
			if _, _, err := conn.Read(r.Context()); err != nil {
				cancel()
				return
			}
		}
	}()

	for data := range events {
		writeCtx, cancelWrite := context.WithTimeout(r.Context(), 10*time.Second)
		err := conn.Write(writeCtx, websocket.MessageText, data)
		cancelWrite()
		if err != nil {
			return
		}
	}
}
