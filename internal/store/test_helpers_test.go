package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/rollcall/internal/domain"
)

// createTestStore creates a new file-backed store in a temp dir.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

var testNow = time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)

// createTestListing builds a listing with minimal required fields.
func createTestListing(id, name string) domain.Listing {
	return domain.Listing{
		ID:        id,
		Name:      name,
		CreatedAt: testNow,
	}
}

// createTestEvent builds an unsequenced event; AppendEvent assigns Seq.
func createTestEvent(listingID, name string, typ domain.EventType, at time.Time) domain.Event {
	return domain.Event{
		ListingID:       listingID,
		ParticipantName: name,
		Type:            typ,
		Kind:            domain.KindMain,
		Timestamp:       at,
	}
}
