package stats

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/searchviz/server/event"
	"github.com/hrygo/searchviz/store"
	"github.com/hrygo/searchviz/store/test"
)

func TestCollector_Collect(t *testing.T) {
	ts := test.NewTestingStore(t)
	_, err := ts.UpsertNode(&store.Node{ID: "a"})
	require.NoError(t, err)
	_, err = ts.UpsertEdge(&store.Edge{ID: "a-b", From: "a", To: "b", Width: 1})
	require.NoError(t, err)

	collector := NewCollector(ts)
	collector.Collect()

	stats := collector.GetStats()
	assert.Equal(t, int64(1), stats.NodeCount)
	assert.Equal(t, int64(1), stats.EdgeCount)
	assert.Equal(t, int64(2), stats.GraphVersion)
	assert.False(t, stats.LastUpdated.IsZero())
}

func TestCollector_RecordEvent(t *testing.T) {
	collector := NewCollector(test.NewTestingStore(t))

	collector.RecordEvent(event.NewNode{ID: "root-0", NodeType: "root", NodeClass: "MctsGraphNode"})
	collector.RecordEvent(event.NewNode{ID: "a-1"})
	collector.RecordEvent(event.NewNode{ID: "o-1", NodeType: "optimizer", NodeClass: "MctsGraphNode"})
	collector.RecordEvent(event.WeightUpdate{From: "root-0", To: "a-1", Weight: 1})
	collector.RecordEvent(event.Unknown{RawType: "FOO"})
	collector.RecordEvent(nil)
	collector.RecordDropped("MISSING_FIELD")

	stats := collector.GetStats()
	assert.Equal(t, int64(5), stats.TotalEvents)
	assert.Equal(t, int64(3), stats.EventsByType["NEW_NODE"])
	assert.Equal(t, int64(1), stats.EventsByType["WEIGHT_UPDATE"])
	assert.Equal(t, int64(1), stats.EventsByType["UNKNOWN"])
	assert.Equal(t, map[string]int64{"root": 1, "unspecified": 1, "optimizer": 1}, stats.NodesByType)
	assert.Equal(t, int64(2), stats.NodesByClass["MctsGraphNode"])
	assert.Equal(t, int64(1), stats.DroppedEvents)
	assert.Equal(t, int64(1), stats.DroppedByReason["MISSING_FIELD"])
}

func TestCollector_SearchLifecycle(t *testing.T) {
	collector := NewCollector(test.NewTestingStore(t))
	assert.Equal(t, SearchStatusIdle, collector.GetStats().SearchStatus)

	collector.RecordEvent(event.SearchStarted{})
	stats := collector.GetStats()
	assert.Equal(t, SearchStatusRunning, stats.SearchStatus)
	assert.False(t, stats.SearchStartedAt.IsZero())

	collector.RecordEvent(event.SolutionScored{Score: 0.4})
	collector.RecordEvent(event.SolutionScored{Score: 0.9})
	collector.RecordEvent(event.SolutionScored{Score: 0.7})
	collector.RecordEvent(event.SearchFinished{Score: 0.9, HasScore: true})

	stats = collector.GetStats()
	assert.Equal(t, SearchStatusFinished, stats.SearchStatus)
	assert.Equal(t, int64(3), stats.SolutionsScored)
	require.NotNil(t, stats.BestScore)
	assert.Equal(t, 0.9, *stats.BestScore)
	require.NotNil(t, stats.FinalScore)
	assert.Equal(t, 0.9, *stats.FinalScore)

	// A new run clears the previous final score but keeps the best score.
	collector.RecordEvent(event.SearchStarted{})
	stats = collector.GetStats()
	assert.Equal(t, SearchStatusRunning, stats.SearchStatus)
	assert.Nil(t, stats.FinalScore)
	assert.True(t, stats.SearchFinishedAt.IsZero())
	assert.NotNil(t, stats.BestScore)
}

func TestCollector_GetStatsReturnsCopy(t *testing.T) {
	collector := NewCollector(test.NewTestingStore(t))
	collector.RecordEvent(event.SolutionScored{Score: 0.5})

	stats := collector.GetStats()
	stats.EventsByType["SOLUTION_SCORED"] = 100
	*stats.BestScore = 99

	again := collector.GetStats()
	assert.Equal(t, int64(1), again.EventsByType["SOLUTION_SCORED"])
	assert.Equal(t, 0.5, *again.BestScore)
}

func TestCollector_StartStop(t *testing.T) {
	ts := test.NewTestingStore(t)
	_, err := ts.UpsertNode(&store.Node{ID: "a"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	collector := NewCollector(ts)
	collector.Start(ctx)
	assert.Equal(t, int64(1), collector.GetStats().NodeCount)

	collector.Stop()
	collector.Stop()
}

func TestStats_GetSummary(t *testing.T) {
	best := 0.8123
	stats := &Stats{
		TotalEvents:     12,
		EventsByType:    map[string]int64{"NEW_NODE": 10, "WEIGHT_UPDATE": 2},
		NodeCount:       10,
		EdgeCount:       9,
		SearchStatus:    SearchStatusRunning,
		SearchStartedAt: time.Now(),
		BestScore:       &best,
		LastEventTime:   time.Now(),
		LastUpdated:     time.Now(),
	}

	summary := stats.GetSummary()
	for _, want := range []string{"Status: running", "Best score: 0.812", "NEW_NODE=10, WEIGHT_UPDATE=2", "Nodes: 10", "Last event: just now", "Final score: -"} {
		assert.True(t, strings.Contains(summary, want), "summary should contain %q:\n%s", want, summary)
	}
}
