// Package blackboard provides the shared key/value memory that the nodes of
// a behavior tree read and write while it is being ticked.
//
// # Concurrency Model
//
// A single blackboard is shared by every node of a tree, and a `parallel`
// node configured as concurrent ticks its children on separate goroutines.
// All methods are therefore safe for concurrent use. A sync.RWMutex is used
// rather than sync.Map because `check` nodes need a consistent Snapshot of
// the whole key space for JSONPath evaluation.
package blackboard

import (
	"maps"
	"sync"
)

// Blackboard is a thread-safe key/value store.
type Blackboard struct {
	mu     sync.RWMutex
	values map[string]any
}

// New creates an empty blackboard, optionally seeded with initial values.
func New(initial map[string]any) *Blackboard {
	b := &Blackboard{values: make(map[string]any, len(initial))}
	maps.Copy(b.values, initial)
	return b
}

// Get returns the value stored under key.
func (b *Blackboard) Get(key string) (any, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	v, ok := b.values[key]
	return v, ok
}

// Set stores value under key, replacing any previous value.
func (b *Blackboard) Set(key string, value any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.values[key] = value
}

// Delete removes key. Deleting a missing key is a no-op.
func (b *Blackboard) Delete(key string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.values, key)
}

// Has reports whether key is present.
func (b *Blackboard) Has(key string) bool {
	_, ok := b.Get(key)
	return ok
}

// Len returns the number of stored keys.
func (b *Blackboard) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.values)
}

// Snapshot returns a shallow copy of the current contents. Nested maps and
// slices are shared with the blackboard and must not be mutated.
func (b *Blackboard) Snapshot() map[string]any {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return maps.Clone(b.values)
}
