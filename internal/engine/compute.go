package engine

import (
	"github.com/roach88/rollcall/internal/domain"
)

// roster is the mutable state threaded through both replay phases.
type roster struct {
	capacity    int
	hasCapacity bool
	main        []domain.Participant
	reserve     []domain.Participant
}

func (r *roster) hasRoom() bool {
	return !r.hasCapacity || len(r.main) < r.capacity
}

// contains reports whether name already holds a main or reserve entry.
func (r *roster) contains(name string) bool {
	return indexOf(r.main, name) >= 0 || indexOf(r.reserve, name) >= 0
}

// Compute replays events into the listing's current roster.
//
// events must be ordered by Seq ascending. Compute does not modify events
// and always returns fresh slices.
func Compute(listing domain.Listing, events []domain.Event) domain.ComputedListing {
	r := &roster{}
	r.capacity, r.hasCapacity = listing.Capacity()
	if r.hasCapacity {
		r.main = make([]domain.Participant, 0, r.capacity)
	} else {
		r.main = make([]domain.Participant, 0, len(events))
	}
	r.reserve = make([]domain.Participant, 0)

	cutoff, hasCutoff := listing.Cutoff()

	var phase2 []domain.Event
	if hasCutoff {
		phase2 = make([]domain.Event, 0, len(events))
		for _, ev := range events {
			if ev.Timestamp.Before(cutoff) {
				r.applyBeforeCutoff(ev)
			} else {
				phase2 = append(phase2, ev)
			}
		}
	} else {
		phase2 = events
	}

	committed := make([]domain.Participant, len(r.main))
	copy(committed, r.main)

	var quitters []domain.Participant
	for _, ev := range phase2 {
		if q, ok := r.applyAfterCutoff(ev, committed); ok {
			quitters = append(quitters, q)
		}
	}

	payers := dedupe(r.main)
	if hasCutoff {
		target := r.capacity
		if !r.hasCapacity {
			target = max(len(r.main), len(committed))
		}
		for len(payers) < target && len(quitters) > 0 {
			q := quitters[len(quitters)-1]
			quitters = quitters[:len(quitters)-1]
			if indexOf(payers, q.Name) < 0 {
				payers = append(payers, q)
			}
		}
	}

	return domain.ComputedListing{
		Listing:            listing,
		MainList:           r.main,
		ReserveList:        r.reserve,
		PayingParticipants: payers,
	}
}

// applyBeforeCutoff applies one Phase 1 event. Invitees never take a main
// slot and are never promoted.
func (r *roster) applyBeforeCutoff(ev domain.Event) {
	if ev.Type == domain.EventAdd {
		if r.contains(ev.ParticipantName) {
			return
		}
		p := domain.ParticipantOf(ev)
		if !p.IsInvitee && r.hasRoom() {
			r.main = append(r.main, p)
		} else {
			r.reserve = append(r.reserve, p)
		}
		return
	}

	if removeAll(&r.reserve, ev.ParticipantName) {
		return
	}
	if !removeAll(&r.main, ev.ParticipantName) {
		return
	}
	for i, p := range r.reserve {
		if !p.IsInvitee {
			r.reserve = append(r.reserve[:i], r.reserve[i+1:]...)
			r.main = append(r.main, p)
			return
		}
	}
}

// applyAfterCutoff applies one Phase 2 event. When a committed payer leaves
// the main list it is returned as a quitter.
func (r *roster) applyAfterCutoff(ev domain.Event, committed []domain.Participant) (domain.Participant, bool) {
	if ev.Type == domain.EventAdd {
		if r.contains(ev.ParticipantName) {
			return domain.Participant{}, false
		}
		p := domain.ParticipantOf(ev)
		if r.hasRoom() {
			r.main = append(r.main, p)
		} else {
			r.reserve = append(r.reserve, p)
		}
		return domain.Participant{}, false
	}

	if removeAll(&r.reserve, ev.ParticipantName) {
		return domain.Participant{}, false
	}
	i := indexOf(r.main, ev.ParticipantName)
	if i < 0 {
		return domain.Participant{}, false
	}
	removed := r.main[i]
	r.main = append(r.main[:i], r.main[i+1:]...)

	if len(r.reserve) > 0 {
		r.main = append(r.main, r.reserve[0])
		r.reserve = r.reserve[1:]
	}

	if indexOf(committed, removed.Name) >= 0 {
		return removed, true
	}
	return domain.Participant{}, false
}

func indexOf(ps []domain.Participant, name string) int {
	for i, p := range ps {
		if p.Name == name {
			return i
		}
	}
	return -1
}

// removeAll drops every entry named name and reports whether any matched.
func removeAll(ps *[]domain.Participant, name string) bool {
	kept := (*ps)[:0]
	removed := false
	for _, p := range *ps {
		if p.Name == name {
			removed = true
			continue
		}
		kept = append(kept, p)
	}
	*ps = kept
	return removed
}

// dedupe copies ps keeping the first entry per name.
func dedupe(ps []domain.Participant) []domain.Participant {
	out := make([]domain.Participant, 0, len(ps))
	for _, p := range ps {
		if indexOf(out, p.Name) < 0 {
			out = append(out, p)
		}
	}
	return out
}
