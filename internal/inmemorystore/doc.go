// Package inmemorystore provides an ephemeral, thread-safe, in-memory
// implementation of the nodestore.Store interface.
//
// # Concurrency Model
//
// The store uses sync.Map: every node writes only its own key, and the key
// space is stable across ticks of the same tree while the values change on
// every tick.
package inmemorystore
