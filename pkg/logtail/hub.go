package logtail

import (
	"sync"
	"sync/atomic"
	"time"
)

// DefaultSubscriberBuffer is used when Subscribe is given a non-positive size.
const DefaultSubscriberBuffer = 256

// Line is one log line observed by a watcher.
type Line struct {
	Category string
	Path     string
	Text     string
	Time     time.Time
}

// Hub fans lines out to subscribers. Publish never blocks: a subscriber whose
// buffer is full misses the line.
type Hub struct {
	mu          sync.RWMutex
	next        uint64
	subscribers map[uint64]chan Line
	closed      bool
	dropped     atomic.Int64
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subscribers: make(map[uint64]chan Line)}
}

// Subscribe registers a subscriber. cancel unregisters it and closes the
// channel; it is safe to call more than once.
func (h *Hub) Subscribe(buffer int) (<-chan Line, func()) {
	if buffer <= 0 {
		buffer = DefaultSubscriberBuffer
	}
	ch := make(chan Line, buffer)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	id := h.next
	h.next++
	h.subscribers[id] = ch
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if c, ok := h.subscribers[id]; ok {
				delete(h.subscribers, id)
				close(c)
			}
		})
	}
}

// Publish delivers line to every subscriber with room for it.
func (h *Hub) Publish(line Line) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.subscribers {
		select {
		case ch <- line:
		default:
			h.dropped.Add(1)
		}
	}
}

// Subscribers returns the current subscriber count.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// Dropped returns the total number of deliveries skipped for slow
// subscribers.
func (h *Hub) Dropped() int64 {
	return h.dropped.Load()
}

// Close closes every subscriber channel. Later subscriptions receive a
// closed channel.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, ch := range h.subscribers {
		close(ch)
		delete(h.subscribers, id)
	}
	h.closed = true
}
