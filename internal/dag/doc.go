// Package dag provides a small, concurrency-safe directed graph used to track
// which tree documents include which. Vertices are document keys (file paths
// or catalog names) and an edge from A to B records that A includes B as a
// subtree. DetectCycles rejects include chains that loop back on themselves.
package dag
