// pattern: Imperative Shell

package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"logictree/internal/events"
)

// subscriberBuffer bounds how far a slow subscriber may fall behind before
// changes are dropped for it.
const subscriberBuffer = 16

// eventBroker fans tree change events out to stream subscribers.
type eventBroker struct {
	mu          sync.Mutex
	subscribers map[chan events.TreeChanged]struct{}
	closed      bool
}

func newEventBroker() *eventBroker {
	return &eventBroker{
		subscribers: make(map[chan events.TreeChanged]struct{}),
	}
}

// Subscribe returns a channel receiving every change until Unsubscribe or
// Close. The channel is closed when the broker closes.
func (b *eventBroker) Subscribe() chan events.TreeChanged {
	ch := make(chan events.TreeChanged, subscriberBuffer)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch
	}
	b.subscribers[ch] = struct{}{}
	return ch
}

// Unsubscribe removes a subscriber.
func (b *eventBroker) Unsubscribe(ch chan events.TreeChanged) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subscribers[ch]; ok {
		delete(b.subscribers, ch)
		close(ch)
	}
}

// Notify delivers ev to every subscriber without blocking. A subscriber
// whose buffer is full misses ev but still re-reads state on the next one.
func (b *eventBroker) Notify(ev events.TreeChanged) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subscribers {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Close ends every subscription.
func (b *eventBroker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	for ch := range b.subscribers {
		delete(b.subscribers, ch)
		close(ch)
	}
}

// handleEvents is the SSE endpoint. It sends "connected" on open, then a
// "refresh" event carrying the change for every tree change.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := s.events.Subscribe()
	defer s.events.Unsubscribe(ch)

	fmt.Fprintf(w, "event: connected\ndata: ok\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: refresh\ndata: %s\n\n", data)
			flusher.Flush()
		}
	}
}
