// Package memory is the in-process graph storage driver.
package memory

import (
	"sync"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/hrygo/searchviz/internal/profile"
	"github.com/hrygo/searchviz/store"
)

// DB keeps nodes and edges in insertion-ordered maps keyed by id.
type DB struct {
	profile *profile.Profile

	mu      sync.RWMutex
	nodes   *orderedmap.OrderedMap[string, *store.Node]
	edges   *orderedmap.OrderedMap[string, *store.Edge]
	version int64
}

// NewDB opens an empty in-memory graph.
func NewDB(profile *profile.Profile) (store.Driver, error) {
	return &DB{
		profile: profile,
		nodes:   orderedmap.New[string, *store.Node](),
		edges:   orderedmap.New[string, *store.Edge](),
	}, nil
}

func (d *DB) Close() error {
	return nil
}

func (d *DB) Version() int64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.version
}

func (d *DB) Counts() (int, int) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.nodes.Len(), d.edges.Len()
}

func (d *DB) Snapshot() (*store.Graph, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	graph := &store.Graph{
		Version: d.version,
		Nodes:   make([]*store.Node, 0, d.nodes.Len()),
		Edges:   make([]*store.Edge, 0, d.edges.Len()),
	}
	for pair := d.nodes.Oldest(); pair != nil; pair = pair.Next() {
		graph.Nodes = append(graph.Nodes, pair.Value.Clone())
	}
	for pair := d.edges.Oldest(); pair != nil; pair = pair.Next() {
		graph.Edges = append(graph.Edges, pair.Value.Clone())
	}
	return graph, nil
}
