package bt

import (
	"context"
	"time"

	"github.com/vk/behaviorgo/internal/blackboard"
)

type decorator struct {
	meta  Meta
	child Node
}

func (d *decorator) Meta() Meta       { return d.meta }
func (d *decorator) Children() []Node { return []Node{d.child} }
func (d *decorator) Reset()           { d.child.Reset() }

// Inverter swaps Success and Failure.
type Inverter struct{ decorator }

// NewInverter creates an inverter.
func NewInverter(meta Meta, child Node) *Inverter {
	return &Inverter{decorator{meta: meta, child: child}}
}

func (i *Inverter) Tick(ctx context.Context, bb *blackboard.Blackboard) Status {
	switch s := i.child.Tick(ctx, bb); s {
	case Success:
		return Failure
	case Failure:
		return Success
	default:
		return s
	}
}

// Force replaces any final child status with a fixed one. It backs the
// succeeder and failer node types.
type Force struct {
	decorator
	status Status
}

// NewForce creates a decorator that answers status once the child is done.
func NewForce(meta Meta, status Status, child Node) *Force {
	return &Force{decorator: decorator{meta: meta, child: child}, status: status}
}

func (f *Force) Tick(ctx context.Context, bb *blackboard.Blackboard) Status {
	if f.child.Tick(ctx, bb) == Running {
		return Running
	}
	return f.status
}

// Repeater re-runs its child after every success.
type Repeater struct {
	decorator
	count int
	done  int
}

// NewRepeater creates a repeater. A count of zero repeats forever.
func NewRepeater(meta Meta, count int, child Node) *Repeater {
	return &Repeater{decorator: decorator{meta: meta, child: child}, count: count}
}

func (r *Repeater) Tick(ctx context.Context, bb *blackboard.Blackboard) Status {
	switch r.child.Tick(ctx, bb) {
	case Running:
		return Running
	case Failure:
		r.Reset()
		return Failure
	}
	r.done++
	r.child.Reset()
	if r.count > 0 && r.done >= r.count {
		r.Reset()
		return Success
	}
	return Running
}

func (r *Repeater) Reset() {
	r.done = 0
	r.child.Reset()
}

// Retry re-runs its child after a failure, up to a number of attempts.
type Retry struct {
	decorator
	attempts int
	tries    int
}

// NewRetry creates a retry decorator. attempts must be at least 1.
func NewRetry(meta Meta, attempts int, child Node) *Retry {
	return &Retry{decorator: decorator{meta: meta, child: child}, attempts: attempts}
}

func (r *Retry) Tick(ctx context.Context, bb *blackboard.Blackboard) Status {
	switch r.child.Tick(ctx, bb) {
	case Running:
		return Running
	case Success:
		r.Reset()
		return Success
	}
	r.tries++
	r.child.Reset()
	if r.tries >= r.attempts {
		r.Reset()
		return Failure
	}
	return Running
}

func (r *Retry) Reset() {
	r.tries = 0
	r.child.Reset()
}

// Timeout fails its child if it is still running after a duration.
type Timeout struct {
	decorator
	duration time.Duration
	now      func() time.Time
	started  time.Time
}

// NewTimeout creates a timeout decorator. A nil clock means time.Now.
func NewTimeout(meta Meta, d time.Duration, clock func() time.Time, child Node) *Timeout {
	if clock == nil {
		clock = time.Now
	}
	return &Timeout{decorator: decorator{meta: meta, child: child}, duration: d, now: clock}
}

func (t *Timeout) Tick(ctx context.Context, bb *blackboard.Blackboard) Status {
	if t.started.IsZero() {
		t.started = t.now()
	}
	s := t.child.Tick(ctx, bb)
	if s != Running {
		t.started = time.Time{}
		return s
	}
	if t.now().Sub(t.started) >= t.duration {
		t.Reset()
		return Failure
	}
	return Running
}

func (t *Timeout) Reset() {
	t.started = time.Time{}
	t.child.Reset()
}
