package bt

import (
	"context"

	"github.com/vk/behaviorgo/internal/blackboard"
)

// Observer is called after a node has been ticked, with the status it
// returned. Observers of a concurrent parallel node run on several
// goroutines at once.
type Observer func(ctx context.Context, n Node, status Status)

type observed struct {
	Node
	observe Observer
}

// Observe wraps n so that fn sees every status n returns. The wrapper
// reports the same Meta and Children as n.
func Observe(n Node, fn Observer) Node {
	return &observed{Node: n, observe: fn}
}

func (o *observed) Tick(ctx context.Context, bb *blackboard.Blackboard) Status {
	status := o.Node.Tick(ctx, bb)
	o.observe(ctx, o.Node, status)
	return status
}
