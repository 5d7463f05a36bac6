package bt

import (
	"context"

	"github.com/vk/behaviorgo/internal/blackboard"
	"golang.org/x/sync/errgroup"
)

type composite struct {
	meta     Meta
	children []Node
}

func (c *composite) Meta() Meta       { return c.meta }
func (c *composite) Children() []Node { return c.children }

// Sequence succeeds when every child succeeds, in order.
type Sequence struct {
	composite
	current int
}

// NewSequence creates a sequence with memory: a running child is resumed
// on the next tick instead of restarting from the first child.
func NewSequence(meta Meta, children ...Node) *Sequence {
	return &Sequence{composite: composite{meta: meta, children: children}}
}

func (s *Sequence) Tick(ctx context.Context, bb *blackboard.Blackboard) Status {
	for ; s.current < len(s.children); s.current++ {
		if ctx.Err() != nil {
			s.Reset()
			return Failure
		}
		switch s.children[s.current].Tick(ctx, bb) {
		case Running:
			return Running
		case Failure:
			s.Reset()
			return Failure
		}
	}
	s.Reset()
	return Success
}

func (s *Sequence) Reset() {
	s.current = 0
	resetAll(s.children)
}

// Selector succeeds as soon as one child succeeds, in order.
type Selector struct {
	composite
	current int
}

// NewSelector creates a selector (fallback) with memory.
func NewSelector(meta Meta, children ...Node) *Selector {
	return &Selector{composite: composite{meta: meta, children: children}}
}

func (s *Selector) Tick(ctx context.Context, bb *blackboard.Blackboard) Status {
	for ; s.current < len(s.children); s.current++ {
		if ctx.Err() != nil {
			s.Reset()
			return Failure
		}
		switch s.children[s.current].Tick(ctx, bb) {
		case Running:
			return Running
		case Success:
			s.Reset()
			return Success
		}
	}
	s.Reset()
	return Failure
}

func (s *Selector) Reset() {
	s.current = 0
	resetAll(s.children)
}

// Parallel ticks all unfinished children on every tick and decides by
// thresholds.
type Parallel struct {
	composite
	successThreshold int
	failureThreshold int
	concurrent       bool
	results          []Status
}

// NewParallel creates a parallel node. Thresholds of zero select the
// defaults: all children must succeed, one failure fails the node.
func NewParallel(meta Meta, successThreshold, failureThreshold int, concurrent bool, children ...Node) *Parallel {
	if successThreshold <= 0 {
		successThreshold = len(children)
	}
	if failureThreshold <= 0 {
		failureThreshold = 1
	}
	return &Parallel{
		composite:        composite{meta: meta, children: children},
		successThreshold: successThreshold,
		failureThreshold: failureThreshold,
		concurrent:       concurrent,
		results:          make([]Status, len(children)),
	}
}

func (p *Parallel) Tick(ctx context.Context, bb *blackboard.Blackboard) Status {
	if p.concurrent {
		g, gctx := errgroup.WithContext(ctx)
		for i, child := range p.children {
			if p.results[i].Done() {
				continue
			}
			g.Go(func() error {
				p.results[i] = child.Tick(gctx, bb)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i, child := range p.children {
			if !p.results[i].Done() {
				p.results[i] = child.Tick(ctx, bb)
			}
		}
	}

	var successes, failures int
	for _, s := range p.results {
		switch s {
		case Success:
			successes++
		case Failure:
			failures++
		}
	}

	switch {
	case failures >= p.failureThreshold:
		p.Reset()
		return Failure
	case successes >= p.successThreshold:
		p.Reset()
		return Success
	case successes+failures == len(p.children):
		// Everything finished without reaching either threshold.
		p.Reset()
		return Failure
	}
	return Running
}

func (p *Parallel) Reset() {
	clear(p.results)
	resetAll(p.children)
}
