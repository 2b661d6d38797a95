package harness

import "github.com/roach88/rollcall/internal/domain"

// TraceEvent records one executed step.
type TraceEvent struct {
	Step        int    `json:"step"`
	Op          string `json:"op"` // "add" or "remove"
	Participant string `json:"participant"`
	Invitee     bool   `json:"invitee,omitempty"`
	At          string `json:"at"`
	Outcome     string `json:"outcome"`       // domain.ErrorKind code
	Seq         int64  `json:"seq,omitempty"` // zero for rejected steps
}

// Roster is the name-only view of a computed listing.
type Roster struct {
	Main    []string `json:"main"`
	Reserve []string `json:"reserve"`
	Paying  []string `json:"paying"`
}

// RosterOf projects a computed listing onto names.
func RosterOf(c domain.ComputedListing) Roster {
	return Roster{
		Main:    domain.Names(c.MainList),
		Reserve: domain.Names(c.ReserveList),
		Paying:  domain.Names(c.PayingParticipants),
	}
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every step outcome and assertion matched.
	Pass bool `json:"pass"`

	// Trace contains every step in order, accepted or not.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Final is the roster computed after the last step.
	Final domain.ComputedListing `json:"final"`

	// EventCount is the number of accepted events in the log.
	EventCount int `json:"event_count"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends a step to the trace.
func (r *Result) AddTrace(ev TraceEvent) {
	r.Trace = append(r.Trace, ev)
}
