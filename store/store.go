package store

import (
	"github.com/hrygo/searchviz/internal/profile"
)

// Store provides access to the graph collections.
// It has exactly one writer, the reducer; any number of readers may call the
// List and Get methods concurrently and receive copies.
type Store struct {
	profile *profile.Profile
	driver  Driver
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	return &Store{
		driver:  driver,
		profile: profile,
	}
}

func (s *Store) GetDriver() Driver {
	return s.driver
}

func (s *Store) Close() error {
	return s.driver.Close()
}

func (s *Store) UpsertNode(upsert *Node) (*Node, error) {
	return s.driver.UpsertNode(upsert)
}

// UpdateNode patches the node and reports whether it existed.
func (s *Store) UpdateNode(update *UpdateNode) (*Node, bool, error) {
	node, err := s.driver.UpdateNode(update)
	if err != nil {
		return nil, false, err
	}
	return node, node != nil, nil
}

func (s *Store) ListNodes(find *FindNode) ([]*Node, error) {
	return s.driver.ListNodes(find)
}

// GetNode returns the node with the given id, or nil if it is not stored.
func (s *Store) GetNode(id string) (*Node, error) {
	list, err := s.driver.ListNodes(&FindNode{ID: &id})
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

func (s *Store) UpsertEdge(upsert *Edge) (*Edge, error) {
	return s.driver.UpsertEdge(upsert)
}

// UpdateEdge patches the edge and reports whether it existed.
func (s *Store) UpdateEdge(update *UpdateEdge) (*Edge, bool, error) {
	edge, err := s.driver.UpdateEdge(update)
	if err != nil {
		return nil, false, err
	}
	return edge, edge != nil, nil
}

func (s *Store) ListEdges(find *FindEdge) ([]*Edge, error) {
	return s.driver.ListEdges(find)
}

// GetEdge returns the edge with the given id, or nil if it is not stored.
func (s *Store) GetEdge(id string) (*Edge, error) {
	list, err := s.driver.ListEdges(&FindEdge{ID: &id})
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

func (s *Store) Snapshot() (*Graph, error) {
	return s.driver.Snapshot()
}

func (s *Store) Version() int64 {
	return s.driver.Version()
}

func (s *Store) Counts() (int, int) {
	return s.driver.Counts()
}
