// Package registry provides the central "glue" between tree documents and
// Go code.
//
// The Registry maps the node type strings used in documents (e.g.
// "sequence") to factories that build bt.Node values, and maps the names
// referenced by `action` and `condition` leaves to Go functions. Built-in
// node types are contributed by the packages under modules/, each of which
// implements the Module interface.
//
// During application startup, the registry is populated and then validated
// so that a mismatch between registered code and declared arity is caught
// before any document is built.
package registry
