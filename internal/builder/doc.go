// Package builder turns tree documents into runnable behavior trees.
//
// # Pipeline
//
// Every entry point ends in the same four steps:
//  1. **Decode:** the generic document is normalized and decoded into a
//     config.Tree (see internal/config).
//  2. **Expand:** `subtree` nodes are replaced by the root of the tree they
//     reference, read from a file or from the catalog. Include chains are
//     tracked in a dag.Graph so that loops are rejected.
//  3. **Validate:** every node is checked against the registry: known type,
//     allowed child count, allowed property keys. All problems are collected
//     into one *ValidationError, each located by its node address.
//  4. **Instantiate:** factories build the bt.Node values bottom-up.
//
// # Entry Points
//
//   - **BuildTree:** from an in-memory document (a parsed JSON object).
//   - **BuildTreeWithFile:** reads and parses a `.json` or `.hcl` file through
//     the configured billy filesystem, then continues as BuildTree does.
//   - **BuildTreeByName:** loads a document from the catalog.
//
// A Builder holds no per-build state and is safe for concurrent use.
package builder
