package dag

import (
	"errors"
	"sync"
)

// ErrCycle is wrapped by the error DetectCycles returns.
var ErrCycle = errors.New("cycle detected")

// Graph is a directed graph of document keys. It is safe for concurrent use.
type Graph struct {
	mutex sync.RWMutex
	nodes map[string]*node
}

type node struct {
	id  string
	out map[string]*node // documents this one includes
}
