package store

// Graph is a point-in-time copy of the whole graph.
type Graph struct {
	Version int64   `json:"version"`
	Nodes   []*Node `json:"nodes"`
	Edges   []*Edge `json:"edges"`
}
