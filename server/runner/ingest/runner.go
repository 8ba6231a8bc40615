// Package ingest serialises events from concurrent producers into a single
// ordered stream applied by one goroutine.
package ingest

import (
	"context"
	"log/slog"
	"time"

	"github.com/hrygo/searchviz/server/event"
	everrors "github.com/hrygo/searchviz/server/internal/errors"
	"github.com/hrygo/searchviz/server/internal/observability"
	"github.com/hrygo/searchviz/server/reducer"
	"github.com/hrygo/searchviz/server/stats"
	"github.com/hrygo/searchviz/store"
)

// Envelope is one queued event with its arrival metadata.
type Envelope struct {
	Event      event.Event
	RequestID  string
	ReceivedAt time.Time
}

// Runner owns the ingest queue and is the only caller of Reducer.Apply.
type Runner struct {
	store   *store.Store
	reducer *reducer.Reducer
	stats   *stats.Collector
	metrics *observability.Metrics

	queue chan Envelope
	done  chan struct{}
}

// NewRunner creates an ingest runner with a FIFO of the given capacity.
func NewRunner(st *store.Store, r *reducer.Reducer, collector *stats.Collector, metrics *observability.Metrics, size int) *Runner {
	if size <= 0 {
		size = 1024
	}
	return &Runner{
		store:   st,
		reducer: r,
		stats:   collector,
		metrics: metrics,
		queue:   make(chan Envelope, size),
		done:    make(chan struct{}),
	}
}

// Enqueue appends an event to the queue, waiting while it is full.
// Events enqueued by one goroutine are applied in the order they were enqueued.
func (r *Runner) Enqueue(ctx context.Context, env Envelope) error {
	if env.ReceivedAt.IsZero() {
		env.ReceivedAt = time.Now()
	}

	select {
	case <-r.done:
		return everrors.QueueClosed()
	default:
	}

	select {
	case r.queue <- env:
		r.metrics.SetQueueDepth(len(r.queue))
		return nil
	default:
	}

	if reqCtx, ok := observability.FromContext(ctx); ok {
		reqCtx.Debug("ingest queue full, waiting", slog.Int("capacity", cap(r.queue)))
	}
	select {
	case r.queue <- env:
		r.metrics.SetQueueDepth(len(r.queue))
		return nil
	case <-ctx.Done():
		return everrors.ContextCanceled(ctx.Err())
	case <-r.done:
		return everrors.QueueClosed()
	}
}

// Len returns the number of events waiting to be applied.
func (r *Runner) Len() int {
	return len(r.queue)
}

// Run applies queued events until ctx is done, then applies whatever is
// still buffered and returns.
func (r *Runner) Run(ctx context.Context) {
	slog.Info("ingest runner started", "capacity", cap(r.queue))

	for {
		select {
		case env := <-r.queue:
			r.apply(env)
		case <-ctx.Done():
			close(r.done)
			drained := r.drain()
			slog.Info("ingest runner stopped", "drained", drained)
			return
		}
	}
}

func (r *Runner) drain() int {
	n := 0
	for {
		select {
		case env := <-r.queue:
			r.apply(env)
			n++
		default:
			return n
		}
	}
}

func (r *Runner) apply(env Envelope) {
	start := time.Now()
	r.reducer.Apply(env.Event)
	elapsed := time.Since(start)

	eventType := string(event.TypeUnknown)
	if env.Event != nil {
		eventType = string(env.Event.Type())
	}
	r.metrics.RecordApplied(eventType, elapsed)
	r.stats.RecordEvent(env.Event)

	nodes, edges := r.store.Counts()
	r.metrics.SetGraphSize(nodes, edges)
	r.metrics.SetQueueDepth(len(r.queue))

	slog.Debug("event applied",
		observability.LogFieldRequestID, env.RequestID,
		observability.LogFieldEventType, eventType,
		"queued_ms", start.Sub(env.ReceivedAt).Milliseconds(),
		"apply_us", elapsed.Microseconds(),
	)
}
