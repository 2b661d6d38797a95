package pgstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/roach88/rollcall/internal/domain"
)

// ReadListing returns the listing with the given id, or domain.ErrNotFound.
func (s *Store) ReadListing(ctx context.Context, id string) (domain.Listing, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, name, max_size, cutoff_date, created_at
		 FROM listings WHERE id = $1`,
		id,
	)
	l, err := scanListing(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Listing{}, fmt.Errorf("read listing %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return domain.Listing{}, fmt.Errorf("read listing: %w", err)
	}
	return l, nil
}

// ListListings returns every listing, oldest first.
func (s *Store) ListListings(ctx context.Context) ([]domain.Listing, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, max_size, cutoff_date, created_at
		 FROM listings
		 ORDER BY created_at ASC, id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list listings: %w", err)
	}
	defer rows.Close()

	listings := []domain.Listing{}
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("list listings: %w", err)
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

// ReadEvents returns the listing's event log in seq order.
func (s *Store) ReadEvents(ctx context.Context, listingID string) ([]domain.Event, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT listing_id, seq, participant_name, type, participant_kind, timestamp
		 FROM listing_events
		 WHERE listing_id = $1
		 ORDER BY seq ASC`,
		listingID,
	)
	if err != nil {
		return nil, fmt.Errorf("read events: %w", err)
	}
	defer rows.Close()

	events := []domain.Event{}
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("read events: %w", err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

func scanListing(row pgx.Row) (domain.Listing, error) {
	var (
		l       domain.Listing
		maxSize *int32
		cutoff  *time.Time
	)
	if err := row.Scan(&l.ID, &l.Name, &maxSize, &cutoff, &l.CreatedAt); err != nil {
		return domain.Listing{}, err
	}
	if maxSize != nil {
		n := int(*maxSize)
		l.MaxSize = &n
	}
	if cutoff != nil {
		c := cutoff.UTC()
		l.CutoffDate = &c
	}
	l.CreatedAt = l.CreatedAt.UTC()
	return l, nil
}

func scanEvent(row pgx.Row) (domain.Event, error) {
	var (
		ev        domain.Event
		typ, kind int16
	)
	if err := row.Scan(&ev.ListingID, &ev.Seq, &ev.ParticipantName, &typ, &kind, &ev.Timestamp); err != nil {
		return domain.Event{}, err
	}
	ev.Type = domain.EventType(typ)
	ev.Kind = domain.ParticipantKind(kind)
	ev.Timestamp = ev.Timestamp.UTC()
	return ev, nil
}
