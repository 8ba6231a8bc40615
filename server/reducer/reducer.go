// Package reducer applies search events to the graph store, one at a time.
package reducer

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/hrygo/searchviz/server/event"
	everrors "github.com/hrygo/searchviz/server/internal/errors"
	"github.com/hrygo/searchviz/store"
)

// Change lists copies of every record touched by one applied event.
type Change struct {
	Version   int64         `json:"version"`
	EventType event.Type    `json:"event_type"`
	Nodes     []*store.Node `json:"nodes,omitempty"`
	Edges     []*store.Edge `json:"edges,omitempty"`
}

func (c *Change) empty() bool {
	return len(c.Nodes) == 0 && len(c.Edges) == 0
}

// Observer is notified after every Apply that changed the graph.
// GraphChanged runs on the writer goroutine and must not block.
type Observer interface {
	GraphChanged(change Change)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(change Change)

func (f ObserverFunc) GraphChanged(change Change) { f(change) }

// Reducer is the single writer of the graph store.
// Apply must not be called concurrently.
type Reducer struct {
	store *store.Store

	mu        sync.RWMutex
	observers []Observer
}

// New creates a reducer writing into s.
func New(s *store.Store) *Reducer {
	return &Reducer{store: s}
}

// Subscribe registers an observer for graph changes.
func (r *Reducer) Subscribe(o Observer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observers = append(r.observers, o)
}

// Apply updates the graph for one event. Events that reference missing
// records, and events of kinds without a graph effect, are ignored.
func (r *Reducer) Apply(ev event.Event) {
	defer func() {
		if rec := recover(); rec != nil {
			err := everrors.ApplyFailed("reducer panicked", fmt.Errorf("%v", rec))
			slog.Error("failed to apply event", "event_type", eventType(ev), "error_code", err.GetCode(), "error", err)
		}
	}()

	change := Change{EventType: eventType(ev)}
	switch e := ev.(type) {
	case event.NewNode:
		r.applyNewNode(e, &change)
	case event.WeightUpdate:
		r.applyWeightUpdate(e, &change)
	case event.OptimizerUpdate:
		r.applyOptimizerUpdate(e, &change)
	case event.SearchStarted, event.SearchFinished, event.SolutionScored, event.Unknown:
		return
	default:
		slog.Warn("reducer received unsupported event", "event_type", eventType(ev))
		return
	}

	if change.empty() {
		return
	}
	change.Version = r.store.Version()
	r.notify(change)
}

func (r *Reducer) applyNewNode(e event.NewNode, change *Change) {
	node := &store.Node{
		ID:        e.ID,
		Label:     strings.SplitN(e.ID, "-", 2)[0],
		Color:     store.ColorBlue,
		Category:  store.NodeCategoryComponent,
		NodeClass: e.NodeClass,
	}
	switch e.NodeType {
	case event.NodeTypeRoot:
		node.Color = store.ColorGreen
		node.Category = store.NodeCategoryRoot
	case event.NodeTypeOptimizer:
		node.Color = store.ColorPink
		node.Category = store.NodeCategoryOptimizer
		node.Label = "0.000"
	}

	upserted, err := r.store.UpsertNode(node)
	if err != nil {
		slog.Error("failed to upsert node", "id", e.ID, "error", err)
		return
	}
	change.Nodes = append(change.Nodes, upserted)

	if e.Predecessor == "" {
		return
	}
	edge, err := r.store.UpsertEdge(&store.Edge{
		ID:    store.EdgeID(e.Predecessor, e.ID),
		From:  e.Predecessor,
		To:    e.ID,
		Width: 1,
		Label: e.SpecifiedInterface,
	})
	if err != nil {
		slog.Error("failed to upsert edge", "from", e.Predecessor, "to", e.ID, "error", err)
		return
	}
	change.Edges = append(change.Edges, edge)
}

func (r *Reducer) applyWeightUpdate(e event.WeightUpdate, change *Change) {
	width := edgeWidth(e.Weight)
	weight := e.Weight
	edge, ok, err := r.store.UpdateEdge(&store.UpdateEdge{
		ID:     store.EdgeID(e.From, e.To),
		Width:  &width,
		Weight: &weight,
	})
	if err != nil {
		slog.Error("failed to update edge weight", "from", e.From, "to", e.To, "error", err)
		return
	}
	if !ok {
		slog.Debug("weight update for unknown edge ignored", "from", e.From, "to", e.To)
		return
	}
	change.Edges = append(change.Edges, edge)
}

func (r *Reducer) applyOptimizerUpdate(e event.OptimizerUpdate, change *Change) {
	label := formatScore(e.Score)
	color := store.ColorPink
	if e.Score > 0 {
		color = store.ColorRed
	}
	node, ok, err := r.store.UpdateNode(&store.UpdateNode{
		ID:    e.ID,
		Label: &label,
		Color: &color,
	})
	if err != nil {
		slog.Error("failed to update optimizer node", "id", e.ID, "error", err)
		return
	}
	if !ok {
		slog.Debug("optimizer update for unknown node ignored", "id", e.ID)
		return
	}
	change.Nodes = append(change.Nodes, node)
}

func (r *Reducer) notify(change Change) {
	r.mu.RLock()
	observers := make([]Observer, len(r.observers))
	copy(observers, r.observers)
	r.mu.RUnlock()

	for _, o := range observers {
		o.GraphChanged(change)
	}
}

func eventType(ev event.Event) event.Type {
	if ev == nil {
		return event.TypeUnknown
	}
	return ev.Type()
}
