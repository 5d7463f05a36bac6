// Package catalog defines the interface for named tree document storage.
// Subtree nodes with a `tree` property and the `run --tree` command resolve
// documents through it.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vk/behaviorgo/internal/nodeid"
)

// ErrTreeNotFound is returned when no document is stored under a name.
var ErrTreeNotFound = errors.New("tree not found")

// Entry describes one stored document.
type Entry struct {
	Name      string
	UpdatedAt time.Time
}

// Catalog is the interface for a store of tree documents keyed by name.
// Documents are in the generic shape accepted by config.Decode.
// Implementations must be safe for concurrent use.
type Catalog interface {
	// Put stores doc under name, replacing any previous document.
	Put(ctx context.Context, name string, doc map[string]any) error
	// Get returns the document stored under name, or ErrTreeNotFound.
	Get(ctx context.Context, name string) (map[string]any, error)
	// List returns all entries sorted by name.
	List(ctx context.Context) ([]Entry, error)
	// Delete removes the document stored under name, or returns ErrTreeNotFound.
	Delete(ctx context.Context, name string) error
}

// ValidateName checks that name can be used as a catalog key.
func ValidateName(name string) error {
	if !nodeid.IsValidName(name) {
		return fmt.Errorf("invalid tree name %q: must match [a-zA-Z0-9_-]+", name)
	}
	return nil
}
