package store

// Edge is a directed predecessor -> successor connection.
type Edge struct {
	ID    string `json:"id"`
	From  string `json:"from"`
	To    string `json:"to"`
	Width int    `json:"width"`
	Label string `json:"label"`
	// Weight is the last raw weight reported for the edge, nil until one arrives.
	Weight *float64 `json:"weight,omitempty"`
}

// EdgeID derives the composite key of the edge from -> to.
func EdgeID(from, to string) string {
	return from + "-" + to
}

// Clone returns a copy that shares no memory with e.
func (e *Edge) Clone() *Edge {
	if e == nil {
		return nil
	}
	c := *e
	if e.Weight != nil {
		w := *e.Weight
		c.Weight = &w
	}
	return &c
}

// UpdateEdge patches an existing edge. Nil fields are left untouched; the
// label is fixed at creation and cannot be patched.
type UpdateEdge struct {
	ID     string
	Width  *int
	Weight *float64
}

// FindEdge filters ListEdges. Nil fields match everything.
type FindEdge struct {
	ID   *string
	From *string
	To   *string
}
