package domain

import (
	"fmt"
	"strings"
	"time"
)

// Listing is the static configuration of a sign-up list.
// Configuration fields are immutable once the listing is created.
type Listing struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	MaxSize    *int       `json:"max_size,omitempty"`    // nil = unbounded
	CutoffDate *time.Time `json:"cutoff_date,omitempty"` // nil = no phase split
	CreatedAt  time.Time  `json:"created_at"`
}

// Capacity returns the configured max size and whether one is set.
func (l Listing) Capacity() (int, bool) {
	if l.MaxSize == nil {
		return 0, false
	}
	return *l.MaxSize, true
}

// Cutoff returns the configured cutoff date and whether one is set.
func (l Listing) Cutoff() (time.Time, bool) {
	if l.CutoffDate == nil {
		return time.Time{}, false
	}
	return *l.CutoffDate, true
}

// EventType is the transition an event records.
type EventType int

const (
	EventRemove EventType = 0
	EventAdd    EventType = 1
)

// String returns the lower-case wire name of the event type.
func (t EventType) String() string {
	switch t {
	case EventAdd:
		return "add"
	case EventRemove:
		return "remove"
	default:
		return fmt.Sprintf("EventType(%d)", int(t))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t EventType) MarshalText() ([]byte, error) {
	switch t {
	case EventAdd, EventRemove:
		return []byte(t.String()), nil
	}
	return nil, fmt.Errorf("invalid event type %d", int(t))
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *EventType) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "add":
		*t = EventAdd
	case "remove":
		*t = EventRemove
	default:
		return fmt.Errorf("invalid event type %q", string(b))
	}
	return nil
}

// ParticipantKind distinguishes regular participants from invitees.
// It is only meaningful on Add events.
type ParticipantKind int

const (
	KindMain    ParticipantKind = 0
	KindInvitee ParticipantKind = 1
)

// String returns the lower-case wire name of the participant kind.
func (k ParticipantKind) String() string {
	switch k {
	case KindMain:
		return "main"
	case KindInvitee:
		return "invitee"
	default:
		return fmt.Sprintf("ParticipantKind(%d)", int(k))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k ParticipantKind) MarshalText() ([]byte, error) {
	switch k {
	case KindMain, KindInvitee:
		return []byte(k.String()), nil
	}
	return nil, fmt.Errorf("invalid participant kind %d", int(k))
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *ParticipantKind) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "main":
		*k = KindMain
	case "invitee":
		*k = KindInvitee
	default:
		return fmt.Errorf("invalid participant kind %q", string(b))
	}
	return nil
}

// KindFor maps the isInvitee flag used by callers to a ParticipantKind.
func KindFor(isInvitee bool) ParticipantKind {
	if isInvitee {
		return KindInvitee
	}
	return KindMain
}

// Event is one immutable entry of a listing's log.
type Event struct {
	ListingID       string          `json:"listing_id"`
	Seq             int64           `json:"seq"` // Per-listing replay order, assigned by the store
	ParticipantName string          `json:"participant_name"`
	Type            EventType       `json:"type"`
	Kind            ParticipantKind `json:"participant_kind"`
	Timestamp       time.Time       `json:"timestamp"`
}

// Participant is a derived roster entry. Identity is Name.
type Participant struct {
	Name      string `json:"name"`
	IsInvitee bool   `json:"is_invitee"`
}

// ParticipantOf builds the roster entry described by an Add event.
func ParticipantOf(ev Event) Participant {
	return Participant{Name: ev.ParticipantName, IsInvitee: ev.Kind == KindInvitee}
}

// ComputedListing is the roster derived from a listing's log.
type ComputedListing struct {
	Listing            Listing       `json:"listing"`
	MainList           []Participant `json:"main_list"`
	ReserveList        []Participant `json:"reserve_list"`
	PayingParticipants []Participant `json:"paying_participants"`
}

// IsPaying reports whether name is liable for payment.
func (c ComputedListing) IsPaying(name string) bool {
	for _, p := range c.PayingParticipants {
		if p.Name == name {
			return true
		}
	}
	return false
}

// Names returns the names of ps in order.
func Names(ps []Participant) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Name
	}
	return out
}
