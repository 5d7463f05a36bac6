package config

// DefaultTreeName is used when a document does not name its tree.
const DefaultTreeName = "tree"

// Tree is the format-agnostic representation of a whole tree document.
type Tree struct {
	Name        string
	Description string
	Root        *Node
}

// Node is the format-agnostic representation of a single node object.
type Node struct {
	// Type selects the registered node implementation, e.g. "sequence".
	Type string
	// Name is a human-readable label. It defaults to Type.
	Name string
	// Properties holds the node's normalized parameters.
	Properties map[string]any
	// Children are kept in document order.
	Children []*Node
}

// Clone returns a deep copy of the tree.
func (t *Tree) Clone() *Tree {
	if t == nil {
		return nil
	}
	return &Tree{Name: t.Name, Description: t.Description, Root: t.Root.Clone()}
}

// Clone returns a deep copy of the node and its subtree.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	out := &Node{Type: n.Type, Name: n.Name}
	if n.Properties != nil {
		out.Properties = cloneValue(n.Properties).(map[string]any)
	}
	if n.Children != nil {
		out.Children = make([]*Node, len(n.Children))
		for i, c := range n.Children {
			out.Children[i] = c.Clone()
		}
	}
	return out
}

// Count returns the number of nodes in the subtree rooted at n.
func (n *Node) Count() int {
	if n == nil {
		return 0
	}
	total := 1
	for _, c := range n.Children {
		total += c.Count()
	}
	return total
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, vv := range val {
			out[k] = cloneValue(vv)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, vv := range val {
			out[i] = cloneValue(vv)
		}
		return out
	default:
		return v
	}
}
