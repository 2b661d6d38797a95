package pgstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/roach88/rollcall/internal/domain"
	"github.com/roach88/rollcall/internal/engine"
)

const uniqueViolation = "23505"

// CreateListing inserts a new listing.
// Returns domain.ErrListingExists if the name is already taken.
func (s *Store) CreateListing(ctx context.Context, l domain.Listing) (domain.Listing, error) {
	l.CreatedAt = storedTime(l.CreatedAt)
	if l.CutoffDate != nil {
		c := storedTime(*l.CutoffDate)
		l.CutoffDate = &c
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO listings (id, name, max_size, cutoff_date, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		l.ID, l.Name, l.MaxSize, l.CutoffDate, l.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Listing{}, fmt.Errorf("create listing %q: %w", l.Name, domain.ErrListingExists)
		}
		return domain.Listing{}, fmt.Errorf("create listing: %w", err)
	}
	return l, nil
}

// AppendEvent runs the event guard against the participant's latest event
// and, if the transition is valid, appends ev with the next seq for its
// listing.
//
// The listing row is locked FOR UPDATE first. Any other append to the same
// listing blocks there until this transaction ends, so two concurrent adds
// of one name cannot both pass the guard and no two events share a seq.
func (s *Store) AppendEvent(ctx context.Context, ev domain.Event) (domain.Event, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.Event{}, fmt.Errorf("append event: begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var id string
	err = tx.QueryRow(ctx, `SELECT id FROM listings WHERE id = $1 FOR UPDATE`, ev.ListingID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Event{}, fmt.Errorf("append event: listing %s: %w", ev.ListingID, domain.ErrNotFound)
	}
	if err != nil {
		return domain.Event{}, fmt.Errorf("append event: lock listing: %w", err)
	}

	last, err := lastEvent(ctx, tx, ev.ListingID, ev.ParticipantName)
	if err != nil {
		return domain.Event{}, fmt.Errorf("append event: %w", err)
	}
	if err := engine.Guard(last, ev.Type); err != nil {
		return domain.Event{}, fmt.Errorf("append event %s %q: %w", ev.Type, ev.ParticipantName, err)
	}

	err = tx.QueryRow(ctx,
		`SELECT COALESCE(MAX(seq), 0) + 1 FROM listing_events WHERE listing_id = $1`,
		ev.ListingID,
	).Scan(&ev.Seq)
	if err != nil {
		return domain.Event{}, fmt.Errorf("append event: next seq: %w", err)
	}

	ev.Timestamp = storedTime(ev.Timestamp)
	_, err = tx.Exec(ctx,
		`INSERT INTO listing_events
		 (listing_id, seq, participant_name, type, participant_kind, timestamp)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		ev.ListingID, ev.Seq, ev.ParticipantName, int16(ev.Type), int16(ev.Kind), ev.Timestamp,
	)
	if err != nil {
		return domain.Event{}, fmt.Errorf("append event: insert: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Event{}, fmt.Errorf("append event: commit: %w", err)
	}
	return ev, nil
}

// storedTime is t as timestamptz keeps it: UTC, microsecond precision.
// Values returned by writes then compare equal to later reads.
func storedTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

func lastEvent(ctx context.Context, tx pgx.Tx, listingID, name string) (*domain.Event, error) {
	row := tx.QueryRow(ctx,
		`SELECT listing_id, seq, participant_name, type, participant_kind, timestamp
		 FROM listing_events
		 WHERE listing_id = $1 AND participant_name = $2
		 ORDER BY seq DESC
		 LIMIT 1`,
		listingID, name,
	)
	ev, err := scanEvent(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest event: %w", err)
	}
	return &ev, nil
}

// isUniqueViolation reports whether err is a PostgreSQL unique_violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
