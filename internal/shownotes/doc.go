// Package shownotes persists generated show notes in SQLite.
//
// The Store owns schema initialization and exposes Insert, GetByID, and
// ListAll. Inserts are serialized inside the store so concurrent pipeline
// workers can share one handle. Schema changes bump schemaVersion; an older
// database must be moved aside.
package shownotes
