package memory

import (
	"github.com/pkg/errors"

	"github.com/hrygo/searchviz/store"
)

func (d *DB) UpsertEdge(upsert *store.Edge) (*store.Edge, error) {
	if upsert == nil || upsert.ID == "" {
		return nil, errors.New("edge id is required")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.edges.Set(upsert.ID, upsert.Clone())
	d.version++
	return upsert.Clone(), nil
}

func (d *DB) UpdateEdge(update *store.UpdateEdge) (*store.Edge, error) {
	if update == nil {
		return nil, errors.New("update is required")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	edge, ok := d.edges.Get(update.ID)
	if !ok {
		return nil, nil
	}
	if update.Width != nil {
		edge.Width = *update.Width
	}
	if update.Weight != nil {
		w := *update.Weight
		edge.Weight = &w
	}
	d.version++
	return edge.Clone(), nil
}

func (d *DB) ListEdges(find *store.FindEdge) ([]*store.Edge, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if find != nil && find.ID != nil {
		edge, ok := d.edges.Get(*find.ID)
		if !ok || !matchEdge(edge, find) {
			return []*store.Edge{}, nil
		}
		return []*store.Edge{edge.Clone()}, nil
	}

	list := make([]*store.Edge, 0)
	for pair := d.edges.Oldest(); pair != nil; pair = pair.Next() {
		if matchEdge(pair.Value, find) {
			list = append(list, pair.Value.Clone())
		}
	}
	return list, nil
}

func matchEdge(edge *store.Edge, find *store.FindEdge) bool {
	if find == nil {
		return true
	}
	if find.From != nil && edge.From != *find.From {
		return false
	}
	if find.To != nil && edge.To != *find.To {
		return false
	}
	return true
}
