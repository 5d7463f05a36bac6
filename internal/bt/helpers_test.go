package bt

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/vk/behaviorgo/internal/blackboard"
	"github.com/vk/behaviorgo/internal/nodeid"
)

// scripted is a test leaf that replays a fixed list of statuses, repeating
// the last one once the script is exhausted.
type scripted struct {
	leaf
	script []Status
	pos    int
	ticks  atomic.Int32
	resets atomic.Int32
}

func newScripted(name string, script ...Status) *scripted {
	return &scripted{leaf: leaf{meta: meta(name)}, script: script}
}

func (s *scripted) Tick(context.Context, *blackboard.Blackboard) Status {
	s.ticks.Add(1)
	st := s.script[min(s.pos, len(s.script)-1)]
	s.pos++
	return st
}

func (s *scripted) Reset() {
	s.resets.Add(1)
	s.pos = 0
}

func meta(name string) Meta {
	return Meta{Address: nodeid.Root(name), Type: name, Name: name}
}

// fakeClock is a manually advanced clock.
type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func tick(n Node) Status {
	return n.Tick(context.Background(), blackboard.New(nil))
}
