package bt

import (
	"context"

	"github.com/vk/behaviorgo/internal/blackboard"
	"github.com/vk/behaviorgo/internal/nodeid"
)

// Node is a single vertex of a built behavior tree.
type Node interface {
	// Tick advances the node by one step.
	Tick(ctx context.Context, bb *blackboard.Blackboard) Status
	// Reset clears all per-run state of the node and its children.
	Reset()
	// Meta describes where the node sits in the tree and what it is.
	Meta() Meta
	// Children returns the direct children in document order.
	Children() []Node
}

// Meta identifies a node.
type Meta struct {
	Address *nodeid.Address
	Type    string
	Name    string
}

// ID returns the canonical address string of the node.
func (m Meta) ID() string {
	return m.Address.String()
}

// ActionFunc implements an action leaf.
type ActionFunc func(ctx context.Context, bb *blackboard.Blackboard) Status

// ConditionFunc implements a condition leaf.
type ConditionFunc func(ctx context.Context, bb *blackboard.Blackboard) bool

// leaf is embedded by nodes without children.
type leaf struct {
	meta Meta
}

func (l *leaf) Meta() Meta       { return l.meta }
func (l *leaf) Children() []Node { return nil }
func (l *leaf) Reset()           {}

// resetAll resets every node in nodes.
func resetAll(nodes []Node) {
	for _, n := range nodes {
		n.Reset()
	}
}
