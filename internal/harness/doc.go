// Package harness runs YAML scenarios against the real listing service.
//
// A scenario describes one listing, a sequence of timed add/remove
// submissions with their expected outcomes, and assertions on the final
// roster. Each run gets a fresh in-memory SQLite store, a scripted wall
// clock and sequential listing IDs, so two runs of the same scenario
// produce byte-identical traces. Traces can be snapshotted with goldie.
//
// Time expressions in scenarios accept RFC 3339 timestamps or offsets
// from the scenario start or the listing cutoff:
//
//	at: 2026-03-04T10:00:00Z
//	at: start+2h
//	at: cutoff-30m
//	at: cutoff
package harness
