package ingest

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/searchviz/server/event"
	everrors "github.com/hrygo/searchviz/server/internal/errors"
	"github.com/hrygo/searchviz/server/internal/observability"
	"github.com/hrygo/searchviz/server/reducer"
	"github.com/hrygo/searchviz/server/stats"
	"github.com/hrygo/searchviz/store"
	"github.com/hrygo/searchviz/store/test"
)

type fixture struct {
	store   *store.Store
	stats   *stats.Collector
	metrics *observability.Metrics
	runner  *Runner
}

func newFixture(t *testing.T, size int) *fixture {
	t.Helper()
	ts := test.NewTestingStore(t)
	collector := stats.NewCollector(ts)
	metrics := observability.NewMetrics()
	return &fixture{
		store:   ts,
		stats:   collector,
		metrics: metrics,
		runner:  NewRunner(ts, reducer.New(ts), collector, metrics, size),
	}
}

func (f *fixture) start(t *testing.T) (stop func()) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	finished := make(chan struct{})
	go func() {
		f.runner.Run(ctx)
		close(finished)
	}()
	return func() {
		cancel()
		<-finished
	}
}

func TestRunner_AppliesInProducerOrder(t *testing.T) {
	f := newFixture(t, 4)
	stop := f.start(t)

	const producers = 8
	const updates = 20

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			ctx := context.Background()
			id := fmt.Sprintf("n%d-x", p)
			if err := f.runner.Enqueue(ctx, Envelope{Event: event.NewNode{ID: id, Predecessor: "root"}}); err != nil {
				t.Errorf("enqueue failed: %v", err)
				return
			}
			for i := 1; i <= updates; i++ {
				ev := event.WeightUpdate{From: "root", To: id, Weight: float64(i)}
				if err := f.runner.Enqueue(ctx, Envelope{Event: ev}); err != nil {
					t.Errorf("enqueue failed: %v", err)
					return
				}
			}
		}(p)
	}
	wg.Wait()
	stop()

	edges, err := f.store.ListEdges(nil)
	require.NoError(t, err)
	require.Len(t, edges, producers)
	for _, e := range edges {
		// Only the last update survives when every producer's order is kept.
		assert.Equal(t, updates*2, e.Width, "edge %s", e.ID)
	}

	s := f.stats.GetStats()
	assert.Equal(t, int64(producers*(updates+1)), s.TotalEvents)

	series, err := testutil.GatherAndCount(f.metrics.Registry(), "searchviz_events_total")
	require.NoError(t, err)
	assert.Equal(t, 2, series)
}

func TestRunner_DrainsOnShutdown(t *testing.T) {
	f := newFixture(t, 16)

	for i := 0; i < 10; i++ {
		require.NoError(t, f.runner.Enqueue(context.Background(), Envelope{Event: event.NewNode{ID: fmt.Sprintf("n%d", i)}}))
	}
	assert.Equal(t, 10, f.runner.Len())

	// Cancelled before Run starts: everything buffered is still applied.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	f.runner.Run(ctx)

	nodes, err := f.store.ListNodes(nil)
	require.NoError(t, err)
	assert.Len(t, nodes, 10)
	assert.Equal(t, 0, f.runner.Len())

	err = f.runner.Enqueue(context.Background(), Envelope{Event: event.NewNode{ID: "late"}})
	assert.True(t, everrors.IsCode(err, everrors.ErrCodeQueueClosed), "got %v", err)
}

func TestRunner_EnqueueRespectsContext(t *testing.T) {
	f := newFixture(t, 1)
	require.NoError(t, f.runner.Enqueue(context.Background(), Envelope{Event: event.SearchStarted{}}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := f.runner.Enqueue(ctx, Envelope{Event: event.SearchStarted{}})
	assert.True(t, everrors.IsCode(err, everrors.ErrCodeContextCanceled), "got %v", err)
}

func TestRunner_SurvivesBadEvents(t *testing.T) {
	f := newFixture(t, 8)
	stop := f.start(t)

	ctx := context.Background()
	require.NoError(t, f.runner.Enqueue(ctx, Envelope{Event: event.WeightUpdate{From: "a", To: "b", Weight: 1}}))
	require.NoError(t, f.runner.Enqueue(ctx, Envelope{Event: nil}))
	require.NoError(t, f.runner.Enqueue(ctx, Envelope{Event: event.NewNode{ID: "b", Predecessor: "a"}}))
	stop()

	edge, err := f.store.GetEdge("a-b")
	require.NoError(t, err)
	require.NotNil(t, edge)
	assert.Equal(t, 1, edge.Width)
	assert.Equal(t, int64(2), f.stats.GetStats().TotalEvents)
}
