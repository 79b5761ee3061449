// Package store holds what every todo backend shares: the StorageError
// taxonomy, the JSON document codec and an in-memory backend.
//
// A backend stores the whole collection as one JSON array. Load returns the
// full sequence and Save replaces it in full; there are no partial writes and
// no locking. Callers serialize their own read-modify-write cycles.
//
// Backends live in subpackages:
//   - jsonstore: a file on disk (the default)
//   - sqlitestore: one row in a SQLite database
package store
