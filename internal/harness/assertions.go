package harness

import (
	"fmt"
	"slices"
	"strings"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, ev := range e.Trace {
		fmt.Fprintf(&buf, "  [%d] %s %s at %s -> %s\n", ev.Step, ev.Op, ev.Participant, ev.At, ev.Outcome)
	}
	return buf.String()
}

// assertNames checks an ordered name list.
func assertNames(kind string, got, want []string, trace []TraceEvent) error {
	if want == nil {
		want = []string{}
	}
	if slices.Equal(got, want) {
		return nil
	}
	return &AssertionError{
		Type:     kind,
		Expected: fmt.Sprintf("%v", want),
		Actual:   fmt.Sprintf("%v", got),
		Trace:    trace,
	}
}

// assertEventCount checks how many events were accepted into the log.
func assertEventCount(result *Result, a Assertion) error {
	if result.EventCount == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertEventCount,
		Expected: fmt.Sprintf("%d events", a.Count),
		Actual:   fmt.Sprintf("%d events", result.EventCount),
		Trace:    result.Trace,
	}
}

// EvaluateAssertions runs every assertion and returns the failure messages.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	roster := RosterOf(result.Final)
	var errs []string
	for _, a := range assertions {
		var err error
		switch a.Type {
		case AssertMainList:
			err = assertNames(a.Type, roster.Main, a.Names, result.Trace)
		case AssertReserve:
			err = assertNames(a.Type, roster.Reserve, a.Names, result.Trace)
		case AssertPaying:
			err = assertNames(a.Type, roster.Paying, a.Names, result.Trace)
		case AssertEventCount:
			err = assertEventCount(result, a)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			errs = append(errs, err.Error())
		}
	}
	return errs
}
