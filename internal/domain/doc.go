// Package domain provides the core types for rollcall listings.
//
// This package contains type definitions, sentinel errors and name
// normalisation only. All other internal packages import domain; domain
// imports nothing internal.
//
// Key design constraints:
//   - Events are append-only; a listing's log is ordered by Seq, never by Timestamp
//   - Participant identity inside a listing is the normalised Name
//   - ComputedListing is derived on every read and never persisted
//   - All JSON tags use snake_case
package domain
