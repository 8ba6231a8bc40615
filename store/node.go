package store

// NodeCategory determines how a node is drawn; it has no structural effect.
type NodeCategory string

const (
	NodeCategoryRoot      NodeCategory = "root"
	NodeCategoryOptimizer NodeCategory = "optimizer"
	NodeCategoryComponent NodeCategory = "component"
)

// Node colors understood by the rendering collaborator.
const (
	ColorGreen = "green"
	ColorPink  = "pink"
	ColorBlue  = "blue"
	ColorRed   = "red"
)

// Node is a vertex of the search graph.
type Node struct {
	ID        string       `json:"id"`
	Label     string       `json:"label"`
	Color     string       `json:"color"`
	Category  NodeCategory `json:"category"`
	NodeClass string       `json:"node_class,omitempty"`
}

// Clone returns a copy that shares no memory with n.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := *n
	return &c
}

// UpdateNode patches an existing node. Nil fields are left untouched.
type UpdateNode struct {
	ID    string
	Label *string
	Color *string
}

// FindNode filters ListNodes. A nil filter matches every node.
type FindNode struct {
	ID *string
}
