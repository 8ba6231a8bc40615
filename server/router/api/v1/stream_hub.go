package v1

import (
	"log/slog"
	"sync"

	"github.com/lithammer/shortuuid/v4"

	"github.com/hrygo/searchviz/server/internal/observability"
	"github.com/hrygo/searchviz/server/reducer"
)

// StreamHub fans graph changes out to stream subscribers.
// A subscriber whose buffer is full misses the change; the version carried
// by every change lets it notice the gap and refetch the snapshot.
type StreamHub struct {
	metrics *observability.Metrics
	buffer  int

	mu     sync.RWMutex
	subs   map[string]chan reducer.Change
	closed bool
}

// NewStreamHub creates a hub with a per-subscriber buffer of the given size.
func NewStreamHub(buffer int, metrics *observability.Metrics) *StreamHub {
	if buffer <= 0 {
		buffer = 1
	}
	return &StreamHub{
		metrics: metrics,
		buffer:  buffer,
		subs:    make(map[string]chan reducer.Change),
	}
}

// Subscribe registers a new subscriber. The returned channel is closed by
// cancel or when the hub is closed.
func (h *StreamHub) Subscribe() (id string, changes <-chan reducer.Change, cancel func()) {
	id = shortuuid.New()
	ch := make(chan reducer.Change, h.buffer)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(ch)
		return id, ch, func() {}
	}
	h.subs[id] = ch
	h.mu.Unlock()
	h.metrics.AddSubscribers(1)

	return id, ch, func() { h.unsubscribe(id) }
}

func (h *StreamHub) unsubscribe(id string) {
	h.mu.Lock()
	ch, ok := h.subs[id]
	if ok {
		delete(h.subs, id)
		close(ch)
	}
	h.mu.Unlock()
	if ok {
		h.metrics.AddSubscribers(-1)
	}
}

// GraphChanged implements reducer.Observer. It never blocks.
func (h *StreamHub) GraphChanged(change reducer.Change) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for id, ch := range h.subs {
		select {
		case ch <- change:
		default:
			h.metrics.RecordDropped("stream_backpressure")
			slog.Debug("stream subscriber lagging, change dropped", "subscriber", id, "version", change.Version)
		}
	}
}

// Len returns the number of active subscribers.
func (h *StreamHub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close ends every subscription and rejects new ones.
func (h *StreamHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
		h.metrics.AddSubscribers(-1)
	}
}
