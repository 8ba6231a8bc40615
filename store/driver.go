package store

// Driver is an interface for graph storage drivers.
// Collections keep insertion order: the first upsert of an id fixes its
// position and later upserts overwrite in place.
//
// Updates on an id that is not stored are a no-op and return a nil record.
// Drivers never insert partial records.
type Driver interface {
	Close() error

	// Node model related methods.
	UpsertNode(upsert *Node) (*Node, error)
	UpdateNode(update *UpdateNode) (*Node, error)
	ListNodes(find *FindNode) ([]*Node, error)

	// Edge model related methods.
	UpsertEdge(upsert *Edge) (*Edge, error)
	UpdateEdge(update *UpdateEdge) (*Edge, error)
	ListEdges(find *FindEdge) ([]*Edge, error)

	// Snapshot returns a consistent copy of both collections.
	Snapshot() (*Graph, error)
	// Version increases by one on every successful mutation.
	Version() int64
	// Counts returns the number of stored nodes and edges.
	Counts() (nodes int, edges int)
}
