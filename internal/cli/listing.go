package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/rollcall/internal/domain"
	"github.com/roach88/rollcall/internal/service"
)

// ListingCreateOptions holds flags for the listing create command.
type ListingCreateOptions struct {
	*RootOptions
	Name    string
	MaxSize int
	Cutoff  string
}

// NewListingCommand creates the listing command group.
func NewListingCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "listing",
		Short: "Create and inspect listings",
	}
	cmd.AddCommand(newListingCreateCommand(rootOpts))
	cmd.AddCommand(newListingListCommand(rootOpts))
	cmd.AddCommand(newListingShowCommand(rootOpts))
	return cmd
}

func newListingCreateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListingCreateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new listing",
		Long: `Create a new listing.

Examples:
  rollcall listing create --name "Thursday volley" --max-size 12
  rollcall listing create --name "Thursday volley" --max-size 12 --cutoff 2026-03-05T18:00:00Z`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runListingCreate(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Name, "name", "", "listing name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().IntVar(&opts.MaxSize, "max-size", 0, "main list capacity (omit for unbounded)")
	cmd.Flags().StringVar(&opts.Cutoff, "cutoff", "", "payment cutoff, RFC 3339")

	return cmd
}

func runListingCreate(cmd *cobra.Command, opts *ListingCreateOptions) error {
	f := opts.formatter(cmd)

	req := service.CreateListingRequest{Name: opts.Name}
	if cmd.Flags().Changed("max-size") {
		n := opts.MaxSize
		req.MaxSize = &n
	}
	if opts.Cutoff != "" {
		t, err := time.Parse(time.RFC3339, opts.Cutoff)
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid --cutoff", err)
		}
		req.CutoffDate = &t
	}

	ctx := cmd.Context()
	svc, closeFn, err := opts.openService(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	l, err := svc.CreateListing(ctx, req)
	if err != nil {
		return f.Fail("failed to create listing", err)
	}
	return f.Success(l, func(w io.Writer) {
		fmt.Fprint(w, "Created ")
		writeListing(w, l)
	})
}

func newListingListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every listing, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			ctx := cmd.Context()

			svc, closeFn, err := rootOpts.openService(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			listings, err := svc.ListListings(ctx)
			if err != nil {
				return f.Fail("failed to list listings", err)
			}
			return f.Success(listings, func(w io.Writer) {
				if len(listings) == 0 {
					fmt.Fprintln(w, "No listings.")
					return
				}
				for _, l := range listings {
					writeListing(w, l)
				}
			})
		},
	}
}

func newListingShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <listing-id>",
		Short: "Show the computed main, reserve and paying lists",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			ctx := cmd.Context()

			svc, closeFn, err := rootOpts.openService(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			computed, err := svc.ComputeListing(ctx, args[0])
			if err != nil {
				return f.Fail("failed to compute listing", err)
			}
			return f.Success(computed, func(w io.Writer) { writeRoster(w, computed) })
		},
	}
}

// submitAndShow runs a submission then prints the event and fresh roster.
func submitAndShow(cmd *cobra.Command, opts *RootOptions, listingID string,
	submit func(ctx context.Context, svc *service.ListingService) (domain.Event, error)) error {
	f := opts.formatter(cmd)
	ctx := cmd.Context()

	svc, closeFn, err := opts.openService(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	ev, err := submit(ctx, svc)
	if err != nil {
		return f.Fail("submission rejected", err)
	}
	computed, err := svc.ComputeListing(ctx, listingID)
	if err != nil {
		return f.Fail("failed to compute listing", err)
	}

	data := map[string]any{"event": ev, "listing": computed}
	return f.Success(data, func(w io.Writer) {
		fmt.Fprintf(w, "Accepted %s %s (seq %d)\n", ev.Type, ev.ParticipantName, ev.Seq)
		writeRoster(w, computed)
	})
}

// NewAddCommand creates the add command.
func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	var invitee bool
	cmd := &cobra.Command{
		Use:   "add <listing-id> <name>",
		Short: "Sign a participant up",
		Long: `Sign a participant up for a listing.

Exit codes:
  0 - Accepted
  1 - Rejected (already signed up, unknown listing)
  2 - Command error`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return submitAndShow(cmd, rootOpts, args[0], func(ctx context.Context, svc *service.ListingService) (domain.Event, error) {
				return svc.SubmitAdd(ctx, args[0], args[1], invitee)
			})
		},
	}
	cmd.Flags().BoolVar(&invitee, "invitee", false, "participant is an invitee")
	return cmd
}

// NewRemoveCommand creates the remove command.
func NewRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <listing-id> <name>",
		Short: "Withdraw a participant",
		Long: `Withdraw a participant from a listing.

Exit codes:
  0 - Accepted
  1 - Rejected (never signed up, already withdrawn, unknown listing)
  2 - Command error`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return submitAndShow(cmd, rootOpts, args[0], func(ctx context.Context, svc *service.ListingService) (domain.Event, error) {
				return svc.SubmitRemove(ctx, args[0], args[1])
			})
		},
	}
}
