package engine

import "github.com/roach88/rollcall/internal/domain"

// State is the derived membership state of one participant.
type State int

const (
	Absent State = iota
	Present
)

// StateOf returns the membership state implied by the latest event.
func StateOf(last *domain.Event) State {
	if last != nil && last.Type == domain.EventAdd {
		return Present
	}
	return Absent
}

// Guard decides whether requested is a valid next transition for a
// participant whose most recent event is last (nil when the participant has
// no history in the listing).
//
//	           Add                 Remove
//	Absent     ok                  NotFound (no history) / AlreadyRemoved
//	Present    AlreadyInserted     ok
//
// Returns nil when the transition is valid.
func Guard(last *domain.Event, requested domain.EventType) error {
	switch StateOf(last) {
	case Present:
		if requested == domain.EventAdd {
			return domain.ErrAlreadyInserted
		}
		return nil
	default:
		if requested == domain.EventAdd {
			return nil
		}
		if last == nil {
			return domain.ErrNotFound
		}
		return domain.ErrAlreadyRemoved
	}
}
