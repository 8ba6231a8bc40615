package v1

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/searchviz/server/internal/observability"
	"github.com/hrygo/searchviz/server/reducer"
)

func TestStreamHub_FanOut(t *testing.T) {
	hub := NewStreamHub(4, observability.NewMetrics())
	idA, a, cancelA := hub.Subscribe()
	idB, b, cancelB := hub.Subscribe()
	defer cancelA()
	defer cancelB()
	assert.NotEqual(t, idA, idB)
	assert.Equal(t, 2, hub.Len())

	hub.GraphChanged(reducer.Change{Version: 7})
	assert.Equal(t, int64(7), (<-a).Version)
	assert.Equal(t, int64(7), (<-b).Version)
}

func TestStreamHub_SlowSubscriberDrops(t *testing.T) {
	metrics := observability.NewMetrics()
	hub := NewStreamHub(1, metrics)
	_, ch, cancel := hub.Subscribe()
	defer cancel()

	// The second change does not fit and must not block.
	hub.GraphChanged(reducer.Change{Version: 1})
	hub.GraphChanged(reducer.Change{Version: 2})

	assert.Equal(t, int64(1), (<-ch).Version)
	select {
	case c := <-ch:
		t.Fatalf("unexpected change %d", c.Version)
	default:
	}

	series, err := testutil.GatherAndCount(metrics.Registry(), "searchviz_events_dropped_total")
	require.NoError(t, err)
	assert.Equal(t, 1, series)
}

func TestStreamHub_CancelAndClose(t *testing.T) {
	hub := NewStreamHub(1, observability.NewMetrics())
	_, a, cancelA := hub.Subscribe()
	_, b, _ := hub.Subscribe()

	cancelA()
	cancelA()
	_, ok := <-a
	assert.False(t, ok)
	assert.Equal(t, 1, hub.Len())

	hub.Close()
	_, ok = <-b
	assert.False(t, ok)
	assert.Equal(t, 0, hub.Len())

	_, c, cancelC := hub.Subscribe()
	defer cancelC()
	_, ok = <-c
	assert.False(t, ok, "subscribing to a closed hub yields a closed channel")
}
