// Package nodestore defines the interface for recording the status each
// node of a running tree returned from its most recent tick.
//
// # Why Node Store Exists
//
// A tree only reports the status of its root. The node store keeps the
// per-node view, keyed by node address, so that a run can be traced tick by
// tick and inspected over the health check server while it is in progress.
//
// # Lifecycle and Usage
//
// The store is:
//  1. **Created** once per application.
//  2. **Cleared** before every tree tick.
//  3. **Written** by a bt.Observer attached to every built node.
//  4. **Read** after the tick to print a trace or serve /status.
package nodestore

import (
	"context"

	"github.com/vk/behaviorgo/internal/bt"
	"github.com/vk/behaviorgo/internal/nodeid"
)

// Store is the interface for node status storage.
//
// # Thread-Safety Requirements
//
// Implementations MUST be safe for concurrent use: the children of a
// concurrent parallel node report their statuses from separate goroutines.
type Store interface {
	// SetStatus records the status a node returned.
	SetStatus(ctx context.Context, id *nodeid.Address, status bt.Status) error

	// GetStatus returns the last recorded status of a node, or bt.Invalid
	// if the node has not been ticked since the store was last cleared.
	GetStatus(ctx context.Context, id *nodeid.Address) (bt.Status, error)

	// Snapshot returns every recorded status keyed by node address.
	Snapshot(ctx context.Context) map[string]bt.Status

	// Clear forgets all recorded statuses.
	Clear(ctx context.Context)
}

// Recorder returns an observer that writes every status into s.
func Recorder(s Store) bt.Observer {
	return func(ctx context.Context, n bt.Node, status bt.Status) {
		_ = s.SetStatus(ctx, n.Meta().Address, status)
	}
}
