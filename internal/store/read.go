package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/rollcall/internal/domain"
)

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// ReadListing retrieves a listing by ID.
// Returns domain.ErrNotFound if it does not exist.
func (s *Store) ReadListing(ctx context.Context, id string) (domain.Listing, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, max_size, cutoff_ns, created_at_ns
		FROM listings
		WHERE id = ?
	`, id)

	l, err := scanListing(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Listing{}, fmt.Errorf("listing %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return domain.Listing{}, fmt.Errorf("read listing: %w", err)
	}
	return l, nil
}

// ListListings returns every listing, oldest first.
// Returns an empty slice (not nil) when there are none.
func (s *Store) ListListings(ctx context.Context) ([]domain.Listing, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, max_size, cutoff_ns, created_at_ns
		FROM listings
		ORDER BY created_at_ns ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query listings: %w", err)
	}
	defer rows.Close()

	listings := []domain.Listing{}
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("scan listing: %w", err)
		}
		listings = append(listings, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate listings: %w", err)
	}
	return listings, nil
}

// ReadEvents returns a listing's full log ordered by seq ascending.
// Returns an empty slice (not nil) if the listing has no events; it does
// not check that the listing exists.
func (s *Store) ReadEvents(ctx context.Context, listingID string) ([]domain.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT listing_id, seq, participant_name, type, participant_kind, timestamp_ns
		FROM listing_events
		WHERE listing_id = ?
		ORDER BY seq ASC
	`, listingID)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	events := []domain.Event{}
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

func scanListing(row rowScanner) (domain.Listing, error) {
	var l domain.Listing
	var maxSize, cutoff sql.NullInt64
	var createdAt int64

	if err := row.Scan(&l.ID, &l.Name, &maxSize, &cutoff, &createdAt); err != nil {
		return domain.Listing{}, err
	}

	l.MaxSize = intFromNull(maxSize)
	l.CutoffDate = timeFromNull(cutoff)
	l.CreatedAt = nanosToTime(createdAt)
	return l, nil
}

func scanEvent(row rowScanner) (domain.Event, error) {
	var ev domain.Event
	var typ, kind int
	var ts int64

	if err := row.Scan(&ev.ListingID, &ev.Seq, &ev.ParticipantName, &typ, &kind, &ts); err != nil {
		return domain.Event{}, err
	}

	ev.Type = domain.EventType(typ)
	ev.Kind = domain.ParticipantKind(kind)
	ev.Timestamp = nanosToTime(ts)
	return ev, nil
}
