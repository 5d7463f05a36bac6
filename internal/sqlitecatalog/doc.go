// Package sqlitecatalog implements catalog.Catalog on a SQLite database
// using the pure-Go modernc.org/sqlite driver. Documents are stored as JSON
// text in a single table:
//
//	trees(name TEXT PRIMARY KEY, definition TEXT NOT NULL, updated_at INTEGER NOT NULL)
//
// updated_at holds Unix milliseconds.
package sqlitecatalog
