// Package service is the entry point for every listing operation.
//
// ListingService validates input, stamps events with the wall clock, lets
// the storage layer run the event guard atomically with the append, and
// recomputes rosters on demand with engine.Compute. It holds no roster state
// of its own: the event log is the source of truth.
package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/rollcall/internal/domain"
	"github.com/roach88/rollcall/internal/engine"
	"github.com/roach88/rollcall/internal/validate"
)

// Storage is the persistence collaborator.
// Implemented by store.Store (SQLite) and pgstore.Store (PostgreSQL).
//
// AppendEvent must run the event guard and the insert in one transaction.
type Storage interface {
	CreateListing(ctx context.Context, l domain.Listing) (domain.Listing, error)
	AppendEvent(ctx context.Context, ev domain.Event) (domain.Event, error)
	ReadListing(ctx context.Context, id string) (domain.Listing, error)
	ReadEvents(ctx context.Context, listingID string) ([]domain.Event, error)
	ListListings(ctx context.Context) ([]domain.Listing, error)
}

// CreateListingRequest carries the configuration of a new listing.
type CreateListingRequest struct {
	Name       string     `json:"name"`
	MaxSize    *int       `json:"max_size,omitempty"`
	CutoffDate *time.Time `json:"cutoff_date,omitempty"`
}

// ListingService coordinates validation, storage and computation.
type ListingService struct {
	store     Storage
	validator *validate.Validator
	clock     Clock
	ids       IDGenerator
	logger    *slog.Logger
}

// Option configures a ListingService.
type Option func(*ListingService)

// WithClock replaces the system clock. Tests use testutil.Clock.
func WithClock(c Clock) Option {
	return func(s *ListingService) { s.clock = c }
}

// WithIDGenerator replaces UUIDv7 listing IDs.
func WithIDGenerator(g IDGenerator) Option {
	return func(s *ListingService) { s.ids = g }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(s *ListingService) { s.logger = l }
}

// New creates a ListingService over store.
func New(store Storage, opts ...Option) (*ListingService, error) {
	v, err := validate.New()
	if err != nil {
		return nil, fmt.Errorf("new listing service: %w", err)
	}
	s := &ListingService{
		store:     store,
		validator: v,
		clock:     SystemClock{},
		ids:       UUIDv7{},
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// CreateListing validates req and stores a new listing.
//
// The name is trimmed and NFC-normalised, like participant names. Returns
// *domain.ValidationError for bad input and domain.ErrListingExists if the
// normalised name is already taken.
func (s *ListingService) CreateListing(ctx context.Context, req CreateListingRequest) (domain.Listing, error) {
	now := s.clock.Now()
	l := domain.Listing{
		ID:         s.ids.NewID(),
		Name:       norm.NFC.String(strings.TrimSpace(req.Name)),
		MaxSize:    req.MaxSize,
		CutoffDate: req.CutoffDate,
		CreatedAt:  now,
	}
	if err := s.validator.Listing(l, now); err != nil {
		s.logger.Debug("listing rejected", "name", l.Name, "error", err)
		return domain.Listing{}, err
	}

	created, err := s.store.CreateListing(ctx, l)
	if err != nil {
		return domain.Listing{}, err
	}
	s.logger.Info("listing created", "listing", created.ID, "name", created.Name)
	return created, nil
}

// ComputeListing replays the listing's log into main, reserve and paying lists.
// Nothing is cached: every call reads the full log.
func (s *ListingService) ComputeListing(ctx context.Context, listingID string) (domain.ComputedListing, error) {
	l, err := s.store.ReadListing(ctx, listingID)
	if err != nil {
		return domain.ComputedListing{}, err
	}
	events, err := s.store.ReadEvents(ctx, listingID)
	if err != nil {
		return domain.ComputedListing{}, err
	}
	return engine.Compute(l, events), nil
}

// SubmitAdd records that name signed up.
//
// Returns domain.ErrAlreadyInserted if name is currently signed up and
// domain.ErrNotFound if the listing does not exist.
func (s *ListingService) SubmitAdd(ctx context.Context, listingID, name string, isInvitee bool) (domain.Event, error) {
	return s.submit(ctx, listingID, name, domain.EventAdd, domain.KindFor(isInvitee))
}

// SubmitRemove records that name withdrew.
//
// Returns domain.ErrNotFound if name never signed up (or the listing does
// not exist) and domain.ErrAlreadyRemoved if name already withdrew.
// domain.ErrAlreadyInserted is part of the guard's result set but can never
// be returned here: a Remove is only rejected from the Absent state.
func (s *ListingService) SubmitRemove(ctx context.Context, listingID, name string) (domain.Event, error) {
	return s.submit(ctx, listingID, name, domain.EventRemove, domain.KindMain)
}

// ListListings returns every listing, oldest first.
func (s *ListingService) ListListings(ctx context.Context) ([]domain.Listing, error) {
	return s.store.ListListings(ctx)
}

func (s *ListingService) submit(ctx context.Context, listingID, name string, typ domain.EventType, kind domain.ParticipantKind) (domain.Event, error) {
	normalized, err := domain.NormalizeName(name)
	if err != nil {
		return domain.Event{}, err
	}

	ev := domain.Event{
		ListingID:       listingID,
		ParticipantName: normalized,
		Type:            typ,
		Kind:            kind,
		Timestamp:       s.clock.Now(),
	}

	stored, err := s.store.AppendEvent(ctx, ev)
	if err != nil {
		s.logger.Debug("submission rejected",
			"listing", listingID,
			"participant", normalized,
			"type", typ,
			"kind", domain.KindOf(err),
		)
		return domain.Event{}, err
	}

	s.logger.Info("submission accepted",
		"listing", listingID,
		"participant", normalized,
		"type", typ,
		"participant_kind", kind,
		"seq", stored.Seq,
	)
	return stored, nil
}
