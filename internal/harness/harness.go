package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/roach88/rollcall/internal/domain"
	"github.com/roach88/rollcall/internal/service"
	"github.com/roach88/rollcall/internal/store"
	"github.com/roach88/rollcall/internal/testutil"
)

// Harness is the test execution engine.
// It runs scenarios with a scripted clock and sequential listing IDs.
type Harness struct {
	store  *store.Store
	svc    *service.ListingService
	clock  *testutil.Clock
	logger *slog.Logger
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
//
// Execution flow:
// 1. Create fresh in-memory database and service
// 2. Create the listing at the scenario start time
// 3. Execute steps, comparing each outcome with its expectation
// 4. Compute the roster and evaluate assertions
func Run(scenario *Scenario) (*Result, error) {
	start, err := scenario.StartTime()
	if err != nil {
		return nil, err
	}
	cutoff, err := scenario.CutoffTime(start)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	clock := testutil.NewClock(start)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // Suppress logs in tests
	svc, err := service.New(st,
		service.WithClock(clock),
		service.WithIDGenerator(testutil.NewSequentialIDs("")),
		service.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}

	h := &Harness{store: st, svc: svc, clock: clock, logger: logger}
	ctx := context.Background()

	listing, err := svc.CreateListing(ctx, service.CreateListingRequest{
		Name:       scenario.Listing.Name,
		MaxSize:    scenario.Listing.MaxSize,
		CutoffDate: cutoff,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create listing: %w", err)
	}

	result := NewResult()
	if err := h.executeSteps(ctx, listing.ID, scenario.Steps, start, cutoff, result); err != nil {
		return nil, fmt.Errorf("failed to execute steps: %w", err)
	}

	result.Final, err = svc.ComputeListing(ctx, listing.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute listing: %w", err)
	}
	events, err := st.ReadEvents(ctx, listing.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to read events: %w", err)
	}
	result.EventCount = len(events)

	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(errMsg)
	}
	return result, nil
}

// executeSteps submits each step at its scripted time.
// Unexpected outcomes are recorded as errors; only infrastructure
// faults abort the run.
func (h *Harness) executeSteps(ctx context.Context, listingID string, steps []Step, start time.Time, cutoff *time.Time, result *Result) error {
	for i, step := range steps {
		at := h.clock.Advance(DefaultStep)
		if step.At != "" {
			t, err := resolveTime(step.At, start, cutoff)
			if err != nil {
				return fmt.Errorf("step %d: %w", i+1, err)
			}
			h.clock.Set(t)
			at = t
		}

		var ev domain.Event
		var err error
		if step.Add != "" {
			ev, err = h.svc.SubmitAdd(ctx, listingID, step.Add, step.Invitee)
		} else {
			ev, err = h.svc.SubmitRemove(ctx, listingID, step.Remove)
		}

		kind := domain.KindOf(err)
		if kind == domain.KindInternal {
			return fmt.Errorf("step %d: %w", i+1, err)
		}

		result.AddTrace(TraceEvent{
			Step:        i + 1,
			Op:          step.Op(),
			Participant: step.Participant(),
			Invitee:     step.Invitee,
			At:          at.UTC().Format(time.RFC3339),
			Outcome:     kind.String(),
			Seq:         ev.Seq,
		})

		if got, want := kind.String(), step.ExpectedOutcome(); got != want {
			result.AddError(fmt.Sprintf("step %d (%s %s): expected %s, got %s",
				i+1, step.Op(), step.Participant(), want, got))
		}
		h.logger.Debug("step executed", "step", i+1, "op", step.Op(), "outcome", kind)
	}
	return nil
}
