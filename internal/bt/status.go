package bt

import "fmt"

// Status is the result of ticking a node.
type Status int

const (
	// Invalid is the zero value; no node ever returns it from Tick.
	Invalid Status = iota
	// Success means the node achieved its goal.
	Success
	// Failure means the node could not achieve its goal.
	Failure
	// Running means the node needs further ticks to finish.
	Running
)

func (s Status) String() string {
	switch s {
	case Invalid:
		return "invalid"
	case Success:
		return "success"
	case Failure:
		return "failure"
	case Running:
		return "running"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Done reports whether s is a final status.
func (s Status) Done() bool {
	return s == Success || s == Failure
}
