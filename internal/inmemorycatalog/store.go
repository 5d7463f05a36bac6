// Package inmemorycatalog provides a simple, thread-safe, in-memory
// implementation of the catalog.Catalog interface.
package inmemorycatalog

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/vk/behaviorgo/internal/catalog"
	"github.com/vk/behaviorgo/internal/config"
)

type entry struct {
	doc       map[string]any
	updatedAt time.Time
}

// Store implements the catalog.Catalog interface using a map and a mutex
// for thread-safe concurrent access. Documents are copied on the way in
// and out so callers cannot mutate stored state.
type Store struct {
	mu    sync.RWMutex
	trees map[string]entry
	now   func() time.Time
}

// New creates a new, empty in-memory catalog.
func New() *Store {
	return &Store{
		trees: make(map[string]entry),
		now:   time.Now,
	}
}

var _ catalog.Catalog = (*Store)(nil)

// Put implements catalog.Catalog.
func (s *Store) Put(ctx context.Context, name string, doc map[string]any) error {
	if err := catalog.ValidateName(name); err != nil {
		return err
	}
	if doc == nil {
		return fmt.Errorf("cannot store nil document for tree %q", name)
	}
	copied := config.Normalize(doc).(map[string]any)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.trees[name] = entry{doc: copied, updatedAt: s.now()}
	return nil
}

// Get implements catalog.Catalog.
func (s *Store) Get(ctx context.Context, name string) (map[string]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.trees[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", catalog.ErrTreeNotFound, name)
	}
	return config.Normalize(e.doc).(map[string]any), nil
}

// List implements catalog.Catalog.
func (s *Store) List(ctx context.Context) ([]catalog.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]catalog.Entry, 0, len(s.trees))
	for name, e := range s.trees {
		entries = append(entries, catalog.Entry{Name: name, UpdatedAt: e.updatedAt})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// Delete implements catalog.Catalog.
func (s *Store) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.trees[name]; !ok {
		return fmt.Errorf("%w: %s", catalog.ErrTreeNotFound, name)
	}
	delete(s.trees, name)
	return nil
}
