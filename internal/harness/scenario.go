package harness

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/rollcall/internal/domain"
)

// DefaultStart is the clock reading at which a scenario begins when it
// does not set its own start.
var DefaultStart = time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)

// DefaultStep is how far the clock moves before a step with no "at".
const DefaultStep = time.Minute

// Scenario defines a listing and the submissions made against it.
type Scenario struct {
	// Name uniquely identifies this scenario. Also the golden file name.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Start is the clock reading when the listing is created (RFC 3339).
	// Defaults to DefaultStart.
	Start string `yaml:"start,omitempty"`

	Listing ListingSpec `yaml:"listing"`

	// Steps are executed in order. Each is exactly one add or remove.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final roster.
	Assertions []Assertion `yaml:"assertions"`
}

// ListingSpec configures the scenario's listing.
type ListingSpec struct {
	Name    string `yaml:"name"`
	MaxSize *int   `yaml:"max_size,omitempty"`
	// Cutoff is a time expression; "cutoff"-relative forms are not allowed here.
	Cutoff string `yaml:"cutoff,omitempty"`
}

// Step is one submission.
type Step struct {
	Add     string `yaml:"add,omitempty"`
	Remove  string `yaml:"remove,omitempty"`
	Invitee bool   `yaml:"invitee,omitempty"`

	// At is a time expression. When empty the clock advances by DefaultStep.
	At string `yaml:"at,omitempty"`

	// Expect is the expected outcome code (see domain.ErrorKind.String).
	// Defaults to "ok".
	Expect string `yaml:"expect,omitempty"`
}

// Op returns "add" or "remove".
func (s Step) Op() string {
	if s.Add != "" {
		return domain.EventAdd.String()
	}
	return domain.EventRemove.String()
}

// Participant returns the name the step targets.
func (s Step) Participant() string {
	if s.Add != "" {
		return s.Add
	}
	return s.Remove
}

// ExpectedOutcome returns Expect, defaulting to "ok".
func (s Step) ExpectedOutcome() string {
	if s.Expect == "" {
		return domain.KindNone.String()
	}
	return s.Expect
}

// Assertion validates the final roster.
type Assertion struct {
	// Type specifies the assertion type:
	// - "main_list": MainList names equal Names, in order
	// - "reserve_list": ReserveList names equal Names, in order
	// - "paying": PayingParticipants names equal Names, in order
	// - "event_count": the log holds exactly Count events
	Type  string   `yaml:"type"`
	Names []string `yaml:"names,omitempty"`
	Count int      `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertMainList   = "main_list"
	AssertReserve    = "reserve_list"
	AssertPaying     = "paying"
	AssertEventCount = "event_count"
)

var validOutcomes = map[string]bool{
	domain.KindNone.String():            true,
	domain.KindNotFound.String():        true,
	domain.KindAlreadyInserted.String(): true,
	domain.KindAlreadyRemoved.String():  true,
	domain.KindInvalid.String():         true,
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Listing.Name == "" {
		return fmt.Errorf("listing.name is required")
	}

	start, err := s.StartTime()
	if err != nil {
		return err
	}
	cutoff, err := s.CutoffTime(start)
	if err != nil {
		return err
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	for i, step := range s.Steps {
		if (step.Add == "") == (step.Remove == "") {
			return fmt.Errorf("steps[%d]: exactly one of add or remove is required", i)
		}
		if step.Remove != "" && step.Invitee {
			return fmt.Errorf("steps[%d]: invitee only applies to add", i)
		}
		if !validOutcomes[step.ExpectedOutcome()] {
			return fmt.Errorf("steps[%d]: unknown expect %q", i, step.Expect)
		}
		if step.At != "" {
			if _, err := resolveTime(step.At, start, cutoff); err != nil {
				return fmt.Errorf("steps[%d]: %w", i, err)
			}
		}
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}
	for i, a := range s.Assertions {
		if err := validateAssertion(i, a); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertMainList, AssertReserve, AssertPaying:
		if a.Count != 0 {
			return fmt.Errorf("assertions[%d]: count is only valid for event_count", index)
		}
	case AssertEventCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for event_count", index)
		}
		if len(a.Names) > 0 {
			return fmt.Errorf("assertions[%d]: names is not valid for event_count", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}

// StartTime returns the scenario's start instant.
func (s *Scenario) StartTime() (time.Time, error) {
	if s.Start == "" {
		return DefaultStart, nil
	}
	t, err := time.Parse(time.RFC3339, s.Start)
	if err != nil {
		return time.Time{}, fmt.Errorf("start: %w", err)
	}
	return t.UTC(), nil
}

// CutoffTime resolves the listing cutoff. Returns nil when none is set.
func (s *Scenario) CutoffTime(start time.Time) (*time.Time, error) {
	if s.Listing.Cutoff == "" {
		return nil, nil
	}
	if strings.HasPrefix(s.Listing.Cutoff, "cutoff") {
		return nil, fmt.Errorf("listing.cutoff cannot be relative to itself")
	}
	t, err := resolveTime(s.Listing.Cutoff, start, nil)
	if err != nil {
		return nil, fmt.Errorf("listing.cutoff: %w", err)
	}
	return &t, nil
}

// resolveTime evaluates a time expression: an RFC 3339 timestamp, or
// "start" / "cutoff" optionally followed by a signed Go duration.
func resolveTime(expr string, start time.Time, cutoff *time.Time) (time.Time, error) {
	var base time.Time
	var rest string
	switch {
	case strings.HasPrefix(expr, "start"):
		base, rest = start, strings.TrimPrefix(expr, "start")
	case strings.HasPrefix(expr, "cutoff"):
		if cutoff == nil {
			return time.Time{}, fmt.Errorf("%q refers to the cutoff but the listing has none", expr)
		}
		base, rest = *cutoff, strings.TrimPrefix(expr, "cutoff")
	default:
		t, err := time.Parse(time.RFC3339, expr)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid time %q: %w", expr, err)
		}
		return t.UTC(), nil
	}

	if rest == "" {
		return base, nil
	}
	if rest[0] != '+' && rest[0] != '-' {
		return time.Time{}, fmt.Errorf("invalid offset in %q", expr)
	}
	d, err := time.ParseDuration(rest)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid offset in %q: %w", expr, err)
	}
	return base.Add(d), nil
}
