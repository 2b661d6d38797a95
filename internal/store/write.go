package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/roach88/rollcall/internal/domain"
	"github.com/roach88/rollcall/internal/engine"
)

// CreateListing inserts a new listing.
// Returns domain.ErrListingExists if the name is already taken.
func (s *Store) CreateListing(ctx context.Context, l domain.Listing) (domain.Listing, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO listings (id, name, max_size, cutoff_ns, created_at_ns)
		VALUES (?, ?, ?, ?, ?)
	`,
		l.ID,
		l.Name,
		nullableInt(l.MaxSize),
		nullableTime(l.CutoffDate),
		timeToNanos(l.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Listing{}, fmt.Errorf("create listing %q: %w", l.Name, domain.ErrListingExists)
		}
		return domain.Listing{}, fmt.Errorf("create listing: %w", err)
	}
	l.CreatedAt = nanosToTime(timeToNanos(l.CreatedAt))
	l.CutoffDate = timeFromNull(nullableTime(l.CutoffDate))
	return l, nil
}

// AppendEvent runs the event guard against the participant's latest event
// and, if the transition is valid, appends ev with the next seq for its
// listing. Guard and append share one transaction.
//
// Returns the stored event (Seq filled in), or one of domain.ErrNotFound,
// domain.ErrAlreadyInserted, domain.ErrAlreadyRemoved.
func (s *Store) AppendEvent(ctx context.Context, ev domain.Event) (domain.Event, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Event{}, fmt.Errorf("append event: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	var one int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM listings WHERE id = ?`, ev.ListingID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Event{}, fmt.Errorf("append event: listing %s: %w", ev.ListingID, domain.ErrNotFound)
	}
	if err != nil {
		return domain.Event{}, fmt.Errorf("append event: lookup listing: %w", err)
	}

	last, err := lastEvent(ctx, tx, ev.ListingID, ev.ParticipantName)
	if err != nil {
		return domain.Event{}, fmt.Errorf("append event: %w", err)
	}
	if err := engine.Guard(last, ev.Type); err != nil {
		return domain.Event{}, fmt.Errorf("append event %s %q: %w", ev.Type, ev.ParticipantName, err)
	}

	err = tx.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(seq), 0) + 1 FROM listing_events WHERE listing_id = ?
	`, ev.ListingID).Scan(&ev.Seq)
	if err != nil {
		return domain.Event{}, fmt.Errorf("append event: next seq: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO listing_events
		(listing_id, seq, participant_name, type, participant_kind, timestamp_ns)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		ev.ListingID,
		ev.Seq,
		ev.ParticipantName,
		int(ev.Type),
		int(ev.Kind),
		timeToNanos(ev.Timestamp),
	)
	if err != nil {
		return domain.Event{}, fmt.Errorf("append event: insert: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return domain.Event{}, fmt.Errorf("append event: commit: %w", err)
	}

	ev.Timestamp = nanosToTime(timeToNanos(ev.Timestamp))
	return ev, nil
}

// lastEvent returns the participant's event with the greatest seq, or nil.
func lastEvent(ctx context.Context, tx *sql.Tx, listingID, name string) (*domain.Event, error) {
	row := tx.QueryRowContext(ctx, `
		SELECT listing_id, seq, participant_name, type, participant_kind, timestamp_ns
		FROM listing_events
		WHERE listing_id = ? AND participant_name = ?
		ORDER BY seq DESC
		LIMIT 1
	`, listingID, name)

	ev, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest event: %w", err)
	}
	return &ev, nil
}

// isUniqueViolation reports whether err is a SQLite UNIQUE/PRIMARY KEY failure.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
