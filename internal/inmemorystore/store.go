package inmemorystore

import (
	"context"
	"sync"

	"github.com/vk/behaviorgo/internal/bt"
	"github.com/vk/behaviorgo/internal/nodeid"
	"github.com/vk/behaviorgo/internal/nodestore"
)

// Store is an in-memory implementation of nodestore.Store.
type Store struct {
	states sync.Map // Key: node address string, Value: bt.Status
}

// New creates a new, empty in-memory node status store.
func New() *Store {
	return &Store{}
}

var _ nodestore.Store = (*Store)(nil)

// SetStatus records the status a node returned.
func (s *Store) SetStatus(ctx context.Context, id *nodeid.Address, status bt.Status) error {
	s.states.Store(id.String(), status)
	return nil
}

// GetStatus returns the last recorded status of a node.
// If no status has been recorded, it returns bt.Invalid.
func (s *Store) GetStatus(ctx context.Context, id *nodeid.Address) (bt.Status, error) {
	status, ok := s.states.Load(id.String())
	if !ok {
		return bt.Invalid, nil
	}
	return status.(bt.Status), nil
}

// Snapshot returns a copy of all recorded statuses.
func (s *Store) Snapshot(ctx context.Context) map[string]bt.Status {
	out := make(map[string]bt.Status)
	s.states.Range(func(k, v any) bool {
		out[k.(string)] = v.(bt.Status)
		return true
	})
	return out
}

// Clear forgets all recorded statuses.
func (s *Store) Clear(ctx context.Context) {
	s.states.Clear()
}
