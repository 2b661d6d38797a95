// Package engine implements the rollcall event guard and roster replay.
//
// Both halves are pure functions of their inputs. Neither touches storage,
// the wall clock, or global state, so they are safe for concurrent use
// across listings.
//
// GUARD:
//
// Each (listing, participant name) pair is a two-state machine,
// Absent -> Present on Add and Present -> Absent on Remove. Guard decides
// whether a requested transition is valid given the latest recorded event
// for the pair. Stores evaluate Guard inside the same transaction that
// appends the event.
//
// REPLAY:
//
// Compute rebuilds the roster from the full log, ordered by Seq.
//
//  1. Events before the cutoff (Phase 1) fill the main list up to capacity.
//     Invitees always wait in the reserve list, and a freed main slot is
//     only taken by the first non-invitee in reserve.
//  2. Events at or after the cutoff (Phase 2) fill the main list regardless
//     of kind, and a freed main slot is taken by the head of reserve.
//  3. Anyone who held a main slot at the cutoff and left afterwards is a
//     quitter. Quitters are added back to the paying set, most recent first,
//     until the liable count reaches the target.
//
// Without a cutoff the whole log is Phase 2 and no backfill happens.
package engine
