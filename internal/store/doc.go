// Package store provides SQLite-backed durable storage for rollcall listings.
//
// The store implements an append-only log with:
//   - Listings: static configuration (name, capacity, cutoff)
//   - Listing events: per-participant add/remove records
//
// # Critical Patterns
//
// Guard and append are one transaction
//   - AppendEvent reads the participant's latest event, runs engine.Guard,
//     allocates the next seq and inserts inside a single tx
//   - The pool is limited to one connection, so appends never interleave
//     within a process; transactions start with BEGIN IMMEDIATE, so they
//     never interleave across processes either
//
// Logical order
//   - Each listing's events carry seq INTEGER, allocated as MAX(seq)+1
//     inside the append tx
//   - Reads use ORDER BY seq ASC; timestamps are metadata only
//
// Uniqueness
//   - listings.name is UNIQUE; a collision surfaces as domain.ErrListingExists
//
// Connection options are passed in the go-sqlite3 DSN: WAL journal,
// synchronous=NORMAL, a 5s busy timeout and foreign keys on. The schema
// version lives in PRAGMA user_version.
//
// Timestamps are stored as UTC Unix nanoseconds.
package store
