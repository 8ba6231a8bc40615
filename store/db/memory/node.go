package memory

import (
	"github.com/pkg/errors"

	"github.com/hrygo/searchviz/store"
)

func (d *DB) UpsertNode(upsert *store.Node) (*store.Node, error) {
	if upsert == nil || upsert.ID == "" {
		return nil, errors.New("node id is required")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.nodes.Set(upsert.ID, upsert.Clone())
	d.version++
	return upsert.Clone(), nil
}

func (d *DB) UpdateNode(update *store.UpdateNode) (*store.Node, error) {
	if update == nil {
		return nil, errors.New("update is required")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	node, ok := d.nodes.Get(update.ID)
	if !ok {
		return nil, nil
	}
	if update.Label != nil {
		node.Label = *update.Label
	}
	if update.Color != nil {
		node.Color = *update.Color
	}
	d.version++
	return node.Clone(), nil
}

func (d *DB) ListNodes(find *store.FindNode) ([]*store.Node, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if find != nil && find.ID != nil {
		node, ok := d.nodes.Get(*find.ID)
		if !ok {
			return []*store.Node{}, nil
		}
		return []*store.Node{node.Clone()}, nil
	}

	list := make([]*store.Node, 0, d.nodes.Len())
	for pair := d.nodes.Oldest(); pair != nil; pair = pair.Next() {
		list = append(list, pair.Value.Clone())
	}
	return list, nil
}
