package cli

import (
	"context"
	"fmt"
	"io"
	"reflect"

	"github.com/spf13/cobra"

	"github.com/roach88/rollcall/internal/domain"
	"github.com/roach88/rollcall/internal/service"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	ListingID string // optional - specific listing only
}

// ReplayListingResult holds the replay result for a single listing.
type ReplayListingResult struct {
	ListingID     string `json:"listing_id"`
	Name          string `json:"name"`
	Main          int    `json:"main"`
	Reserve       int    `json:"reserve"`
	Paying        int    `json:"paying"`
	Deterministic bool   `json:"deterministic"`
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Listings         []ReplayListingResult `json:"listings"`
	TotalListings    int                   `json:"total_listings"`
	AllDeterministic bool                  `json:"all_deterministic"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Recompute listings from their logs and verify determinism",
		Long: `Recompute every listing from its event log twice and compare the results.

Exit codes:
  0 - All listings are deterministic
  1 - Determinism verification failed (differences detected)
  2 - Command error (database not found, etc.)

Examples:
  rollcall replay --db ./rollcall.db
  rollcall replay --db ./rollcall.db --listing 0190f2b4-...
  rollcall replay --db ./rollcall.db --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.ListingID, "listing", "", "replay specific listing only")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	f := opts.formatter(cmd)

	svc, closeFn, err := opts.openService(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	var ids []string
	if opts.ListingID != "" {
		ids = []string{opts.ListingID}
	} else {
		listings, err := svc.ListListings(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list listings", err)
		}
		for _, l := range listings {
			ids = append(ids, l.ID)
		}
	}

	result := ReplayResult{
		Listings:         make([]ReplayListingResult, 0, len(ids)),
		TotalListings:    len(ids),
		AllDeterministic: true,
	}

	for _, id := range ids {
		lr, err := replayAndVerify(ctx, svc, id)
		if err != nil {
			return f.Fail(fmt.Sprintf("failed to replay listing %s", id), err)
		}
		result.Listings = append(result.Listings, lr)
		if !lr.Deterministic {
			result.AllDeterministic = false
		}
		f.VerboseLog("replayed %s: %d main, %d reserve, %d paying", id, lr.Main, lr.Reserve, lr.Paying)
	}

	if !result.AllDeterministic {
		if opts.Format == "json" {
			_ = f.Error("determinism", "determinism verification failed", result)
		} else {
			outputReplayText(f.Writer, result, opts.Verbose)
		}
		// Determinism failure = exit code 1
		return NewExitError(ExitFailure, "determinism verification failed")
	}

	return f.Success(result, func(w io.Writer) { outputReplayText(w, result, opts.Verbose) })
}

// replayAndVerify computes a listing twice and compares the results.
func replayAndVerify(ctx context.Context, svc *service.ListingService, id string) (ReplayListingResult, error) {
	first, err := svc.ComputeListing(ctx, id)
	if err != nil {
		return ReplayListingResult{}, fmt.Errorf("first replay failed: %w", err)
	}
	second, err := svc.ComputeListing(ctx, id)
	if err != nil {
		return ReplayListingResult{}, fmt.Errorf("second replay failed: %w", err)
	}

	return ReplayListingResult{
		ListingID:     id,
		Name:          first.Listing.Name,
		Main:          len(first.MainList),
		Reserve:       len(first.ReserveList),
		Paying:        len(first.PayingParticipants),
		Deterministic: computedEqual(first, second),
	}, nil
}

// computedEqual compares two computed listings field by field.
func computedEqual(a, b domain.ComputedListing) bool {
	return reflect.DeepEqual(a.Listing, b.Listing) &&
		reflect.DeepEqual(a.MainList, b.MainList) &&
		reflect.DeepEqual(a.ReserveList, b.ReserveList) &&
		reflect.DeepEqual(a.PayingParticipants, b.PayingParticipants)
}

// outputReplayText outputs the replay result as text.
func outputReplayText(w io.Writer, result ReplayResult, verbose bool) {
	if result.TotalListings == 0 {
		fmt.Fprintln(w, "No listings found in database.")
		return
	}

	fmt.Fprintf(w, "Replay Summary: %d listing(s)\n", result.TotalListings)
	fmt.Fprintln(w)

	for _, l := range result.Listings {
		status := "✓"
		if !l.Deterministic {
			status = "✗"
		}
		fmt.Fprintf(w, "%s Listing: %s (%s)\n", status, l.ListingID, l.Name)
		if verbose {
			fmt.Fprintf(w, "  Main: %d\n", l.Main)
			fmt.Fprintf(w, "  Reserve: %d\n", l.Reserve)
			fmt.Fprintf(w, "  Paying: %d\n", l.Paying)
		} else {
			fmt.Fprintf(w, "  %d main, %d reserve, %d paying\n", l.Main, l.Reserve, l.Paying)
		}
		if !l.Deterministic {
			fmt.Fprintln(w, "  Warning: Non-deterministic replay detected!")
		}
		fmt.Fprintln(w)
	}

	if result.AllDeterministic {
		fmt.Fprintln(w, "✓ All listings verified deterministic")
		return
	}
	fmt.Fprintln(w, "✗ Determinism verification failed")
}
