package session

import (
	"sync"

	"github.com/meur/civatlas/internal/viewsync"
)

// Hub fans rendered views out to subscribers. Slow subscribers only ever
// see the latest view; intermediate ones are dropped.
type Hub struct {
	mu      sync.Mutex
	last    viewsync.View
	hasLast bool
	subs    map[int]chan viewsync.View
	next    int
	closed  bool
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{subs: make(map[int]chan viewsync.View)}
}

// Render implements viewsync.Renderer
func (h *Hub) Render(v viewsync.View) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.last, h.hasLast = v, true
	for _, ch := range h.subs {
		offer(ch, v)
	}
}

// Subscribe returns a channel receiving every subsequent view, primed with
// the latest one. The returned func unsubscribes and closes the channel.
func (h *Hub) Subscribe() (<-chan viewsync.View, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan viewsync.View, 1)
	if h.closed {
		close(ch)
		return ch, func() {}
	}
	if h.hasLast {
		ch <- h.last
	}
	id := h.next
	h.next++
	h.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if _, ok := h.subs[id]; ok {
				delete(h.subs, id)
				close(ch)
			}
		})
	}
}

// Close ends every subscription and rejects new ones
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
}

// Subscribers returns the number of live subscriptions
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// offer replaces any pending view with v
func offer(ch chan viewsync.View, v viewsync.View) {
	for {
		select {
		case ch <- v:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
