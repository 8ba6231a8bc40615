// Package stats keeps running statistics about the search being visualised.
package stats

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/hrygo/searchviz/server/event"
	"github.com/hrygo/searchviz/store"
)

// SearchStatus is the lifecycle of the search run as reported by its events.
type SearchStatus string

const (
	SearchStatusIdle     SearchStatus = "idle"
	SearchStatusRunning  SearchStatus = "running"
	SearchStatusFinished SearchStatus = "finished"
)

// Stats represents the statistics of the current session.
type Stats struct {
	// Event stats
	TotalEvents     int64            `json:"total_events"`
	EventsByType    map[string]int64 `json:"events_by_type"`
	DroppedEvents   int64            `json:"dropped_events"`
	DroppedByReason map[string]int64 `json:"dropped_by_reason"`
	LastEventTime   time.Time        `json:"last_event_time"`

	// Node stats
	NodesByType  map[string]int64 `json:"nodes_by_type"`
	NodesByClass map[string]int64 `json:"nodes_by_class"`

	// Graph stats
	NodeCount    int64 `json:"node_count"`
	EdgeCount    int64 `json:"edge_count"`
	GraphVersion int64 `json:"graph_version"`

	// Search stats
	SearchStatus     SearchStatus `json:"search_status"`
	SearchStartedAt  time.Time    `json:"search_started_at"`
	SearchFinishedAt time.Time    `json:"search_finished_at"`
	FinalScore       *float64     `json:"final_score,omitempty"`
	SolutionsScored  int64        `json:"solutions_scored"`
	BestScore        *float64     `json:"best_score,omitempty"`

	// Timestamp
	LastUpdated time.Time `json:"last_updated"`
}

// Collector collects and manages search statistics.
type Collector struct {
	store    *store.Store
	stats    *Stats
	interval time.Duration
	mu       sync.Mutex
	tickStop chan struct{}
	stopOnce sync.Once
}

// NewCollector creates a new statistics collector.
func NewCollector(st *store.Store) *Collector {
	return &Collector{
		store: st,
		stats: &Stats{
			EventsByType:    make(map[string]int64),
			DroppedByReason: make(map[string]int64),
			NodesByType:     make(map[string]int64),
			NodesByClass:    make(map[string]int64),
			SearchStatus:    SearchStatusIdle,
			LastUpdated:     time.Now(),
		},
		interval: 5 * time.Second,
		tickStop: make(chan struct{}),
	}
}

// Start begins periodic collection of graph size.
func (c *Collector) Start(ctx context.Context) {
	c.Collect()

	go func() {
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.Collect()
			case <-ctx.Done():
				c.Stop()
				return
			case <-c.tickStop:
				return
			}
		}
	}()
}

// Stop stops the statistics collector.
func (c *Collector) Stop() {
	c.stopOnce.Do(func() {
		close(c.tickStop)
	})
}

// Collect refreshes graph size from the store.
func (c *Collector) Collect() {
	nodes, edges := c.store.Counts()
	version := c.store.Version()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats.NodeCount = int64(nodes)
	c.stats.EdgeCount = int64(edges)
	c.stats.GraphVersion = version
	c.stats.LastUpdated = time.Now()
	slog.Debug("graph stats collected", "nodes", nodes, "edges", edges, "version", version)
}

// RecordEvent records one event handed to the reducer.
func (c *Collector) RecordEvent(ev event.Event) {
	if ev == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	c.stats.TotalEvents++
	c.stats.EventsByType[string(ev.Type())]++
	c.stats.LastEventTime = now

	switch e := ev.(type) {
	case event.NewNode:
		nodeType := e.NodeType
		if nodeType == "" {
			nodeType = "unspecified"
		}
		c.stats.NodesByType[nodeType]++
		if e.NodeClass != "" {
			c.stats.NodesByClass[e.NodeClass]++
		}
	case event.SearchStarted:
		c.stats.SearchStatus = SearchStatusRunning
		c.stats.SearchStartedAt = now
		c.stats.SearchFinishedAt = time.Time{}
		c.stats.FinalScore = nil
	case event.SearchFinished:
		c.stats.SearchStatus = SearchStatusFinished
		c.stats.SearchFinishedAt = now
		if e.HasScore {
			score := e.Score
			c.stats.FinalScore = &score
		}
	case event.SolutionScored:
		c.stats.SolutionsScored++
		if c.stats.BestScore == nil || e.Score > *c.stats.BestScore {
			score := e.Score
			c.stats.BestScore = &score
		}
	}
}

// RecordDropped records an event dropped before it reached the reducer.
func (c *Collector) RecordDropped(reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stats.DroppedEvents++
	c.stats.DroppedByReason[reason]++
}

// GetStats returns a copy of current statistics.
func (c *Collector) GetStats() *Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := *c.stats
	s.EventsByType = copyCounts(c.stats.EventsByType)
	s.DroppedByReason = copyCounts(c.stats.DroppedByReason)
	s.NodesByType = copyCounts(c.stats.NodesByType)
	s.NodesByClass = copyCounts(c.stats.NodesByClass)
	if c.stats.FinalScore != nil {
		v := *c.stats.FinalScore
		s.FinalScore = &v
	}
	if c.stats.BestScore != nil {
		v := *c.stats.BestScore
		s.BestScore = &v
	}
	return &s
}

func copyCounts(m map[string]int64) map[string]int64 {
	out := make(map[string]int64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// GetSummary returns a human-readable summary.
func (s *Stats) GetSummary() string {
	return fmt.Sprintf(
		`Search statistics (updated %s)

Search
  Status: %s
  Started: %s
  Finished: %s
  Final score: %s
  Solutions scored: %d
  Best score: %s

Graph
  Nodes: %d
  Edges: %d
  Version: %d

Events
  Total: %d
  By type: %s
  Dropped: %d
  Last event: %s`,
		s.LastUpdated.Format("2006-01-02 15:04:05"),
		s.SearchStatus,
		formatTime(s.SearchStartedAt),
		formatTime(s.SearchFinishedAt),
		formatScore(s.FinalScore),
		s.SolutionsScored,
		formatScore(s.BestScore),
		s.NodeCount,
		s.EdgeCount,
		s.GraphVersion,
		s.TotalEvents,
		formatCounts(s.EventsByType),
		s.DroppedEvents,
		formatLastActivity(s.LastEventTime),
	)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02 15:04:05")
}

func formatScore(score *float64) string {
	if score == nil {
		return "-"
	}
	return fmt.Sprintf("%.3f", *score)
}

func formatCounts(m map[string]int64) string {
	if len(m) == 0 {
		return "-"
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%d", k, m[k]))
	}
	return strings.Join(parts, ", ")
}

func formatLastActivity(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	duration := time.Since(t)
	if duration < time.Minute {
		return "just now"
	}
	if duration < time.Hour {
		return fmt.Sprintf("%d minutes ago", int(duration.Minutes()))
	}
	if duration < 24*time.Hour {
		return fmt.Sprintf("%d hours ago", int(duration.Hours()))
	}
	return t.Format("2006-01-02")
}
