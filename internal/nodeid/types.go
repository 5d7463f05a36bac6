package nodeid

// PathSegment represents a single component of an address path, e.g., `name[index]`.
type PathSegment struct {
	Name  string
	Index int // -1 indicates no index is present.
}

// NewPathSegment creates a new path segment without an index.
func NewPathSegment(name string) PathSegment {
	return PathSegment{Name: name, Index: -1}
}

// NewPathSegmentWithIndex creates a new path segment that includes an index.
func NewPathSegmentWithIndex(name string, index int) PathSegment {
	return PathSegment{Name: name, Index: index}
}

// Address is the structured representation of a node's position in a tree.
type Address struct {
	Path []PathSegment
}

// Root returns the address of a tree's root node.
func Root(treeName string) *Address {
	return &Address{Path: []PathSegment{NewPathSegment(treeName)}}
}

// Child returns the address of the index-th child of a, labelled with the
// child's node type. The receiver is not modified.
func (a *Address) Child(nodeType string, index int) *Address {
	path := make([]PathSegment, 0, len(a.Path)+1)
	path = append(path, a.Path...)
	path = append(path, NewPathSegmentWithIndex(nodeType, index))
	return &Address{Path: path}
}
