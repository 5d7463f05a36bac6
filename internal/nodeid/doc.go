/*
Package nodeid provides a structured, type-safe representation for the
position of a node inside a behavior tree.

The canonical format is a dot-separated sequence of segments. The first
segment is the tree name; every following segment is the node type of a
child together with its index under the parent, e.g.
`guard.sequence[0].condition[1]`.

Addresses are how validation errors, log lines and the CLI refer to a
single node, so all formatting and parsing lives here.
*/
package nodeid
