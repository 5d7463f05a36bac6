package bt

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/vk/behaviorgo/internal/blackboard"
	"github.com/vk/behaviorgo/internal/config"
	"github.com/vk/behaviorgo/internal/ctxlog"
)

// Tree is the handle returned by the builder.
type Tree struct {
	// ID is unique per built instance; two builds of the same document
	// share everything except the ID.
	ID          uuid.UUID
	Name        string
	Description string
	Root        Node
	Blackboard  *blackboard.Blackboard

	definition *config.Tree

	mu    sync.Mutex
	ticks uint64
	last  Status
}

// NewTree wraps a built root node. def is the normalized definition the
// root was built from; a nil blackboard gets a fresh empty one.
func NewTree(def *config.Tree, root Node, bb *blackboard.Blackboard) *Tree {
	if bb == nil {
		bb = blackboard.New(nil)
	}
	return &Tree{
		ID:          uuid.New(),
		Name:        def.Name,
		Description: def.Description,
		Root:        root,
		Blackboard:  bb,
		definition:  def.Clone(),
	}
}

// Tick ticks the root once. When the root finishes, every node is reset so
// that the next tick starts a new run. The only error is the context's.
func (t *Tree) Tick(ctx context.Context) (Status, error) {
	if err := ctx.Err(); err != nil {
		return Failure, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	status := t.Root.Tick(ctx, t.Blackboard)
	t.ticks++
	t.last = status
	if status != Running {
		t.Root.Reset()
	}

	ctxlog.FromContext(ctx).Debug("Tree ticked.", "tree", t.Name, "tick", t.ticks, "status", status.String())
	return status, ctx.Err()
}

// Reset aborts the current run.
func (t *Tree) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Root.Reset()
	t.last = Invalid
}

// TickCount returns how many times the tree has been ticked.
func (t *Tree) TickCount() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ticks
}

// LastStatus returns the result of the latest tick, or Invalid.
func (t *Tree) LastStatus() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last
}

// Walk visits every node depth-first in pre-order. Returning false from fn
// skips the children of the visited node.
func (t *Tree) Walk(fn func(n Node) bool) {
	var visit func(n Node)
	visit = func(n Node) {
		if !fn(n) {
			return
		}
		for _, c := range n.Children() {
			visit(c)
		}
	}
	visit(t.Root)
}

// Find returns the node with the given canonical address.
func (t *Tree) Find(id string) (Node, bool) {
	var found Node
	t.Walk(func(n Node) bool {
		if found != nil {
			return false
		}
		if n.Meta().ID() == id {
			found = n
			return false
		}
		return true
	})
	return found, found != nil
}

// Size returns the number of nodes in the tree.
func (t *Tree) Size() int {
	count := 0
	t.Walk(func(Node) bool {
		count++
		return true
	})
	return count
}

// Definition returns a copy of the normalized definition the tree was
// built from, with subtrees already inlined.
func (t *Tree) Definition() *config.Tree {
	return t.definition.Clone()
}
