package bt

import (
	"context"
	"time"

	"github.com/vk/behaviorgo/internal/blackboard"
)

// Action runs a Go function on every tick.
type Action struct {
	leaf
	fn ActionFunc
}

// NewAction creates an action leaf.
func NewAction(meta Meta, fn ActionFunc) *Action {
	return &Action{leaf: leaf{meta: meta}, fn: fn}
}

func (a *Action) Tick(ctx context.Context, bb *blackboard.Blackboard) Status {
	return a.fn(ctx, bb)
}

// Condition maps a Go predicate onto Success or Failure.
type Condition struct {
	leaf
	fn ConditionFunc
}

// NewCondition creates a condition leaf.
func NewCondition(meta Meta, fn ConditionFunc) *Condition {
	return &Condition{leaf: leaf{meta: meta}, fn: fn}
}

func (c *Condition) Tick(ctx context.Context, bb *blackboard.Blackboard) Status {
	if c.fn(ctx, bb) {
		return Success
	}
	return Failure
}

// Constant always returns the same status.
type Constant struct {
	leaf
	status Status
}

// NewConstant creates a leaf that always answers status.
func NewConstant(meta Meta, status Status) *Constant {
	return &Constant{leaf: leaf{meta: meta}, status: status}
}

func (c *Constant) Tick(context.Context, *blackboard.Blackboard) Status {
	return c.status
}

// Wait is Running until its duration has elapsed since the first tick of
// the current run.
type Wait struct {
	leaf
	duration time.Duration
	now      func() time.Time
	started  time.Time
}

// NewWait creates a wait leaf. A nil clock means time.Now.
func NewWait(meta Meta, d time.Duration, clock func() time.Time) *Wait {
	if clock == nil {
		clock = time.Now
	}
	return &Wait{leaf: leaf{meta: meta}, duration: d, now: clock}
}

func (w *Wait) Tick(context.Context, *blackboard.Blackboard) Status {
	now := w.now()
	if w.started.IsZero() {
		w.started = now
	}
	if now.Sub(w.started) >= w.duration {
		w.started = time.Time{}
		return Success
	}
	return Running
}

func (w *Wait) Reset() {
	w.started = time.Time{}
}
