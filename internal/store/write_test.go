package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rollcall/internal/domain"
)

func TestCreateListing_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	size := 12
	cutoff := time.Date(2026, 3, 5, 12, 0, 0, 0, time.FixedZone("BRT", -3*3600))
	l := createTestListing("l-1", "Thursday volley")
	l.MaxSize = &size
	l.CutoffDate = &cutoff

	created, err := s.CreateListing(ctx, l)
	require.NoError(t, err)

	got, err := s.ReadListing(ctx, "l-1")
	require.NoError(t, err)
	assert.Equal(t, created, got)
	assert.Equal(t, "Thursday volley", got.Name)
	require.NotNil(t, got.MaxSize)
	assert.Equal(t, 12, *got.MaxSize)
	require.NotNil(t, got.CutoffDate)
	assert.True(t, cutoff.Equal(*got.CutoffDate))
	assert.Equal(t, time.UTC, got.CutoffDate.Location())
}

func TestCreateListing_OptionalFieldsStayNil(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.CreateListing(ctx, createTestListing("l-1", "Open gym"))
	require.NoError(t, err)

	got, err := s.ReadListing(ctx, "l-1")
	require.NoError(t, err)
	assert.Nil(t, got.MaxSize)
	assert.Nil(t, got.CutoffDate)
}

func TestCreateListing_DuplicateName(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.CreateListing(ctx, createTestListing("l-1", "Thursday volley"))
	require.NoError(t, err)

	_, err = s.CreateListing(ctx, createTestListing("l-2", "Thursday volley"))
	require.ErrorIs(t, err, domain.ErrListingExists)

	listings, err := s.ListListings(ctx)
	require.NoError(t, err)
	assert.Len(t, listings, 1)
}

func TestAppendEvent_AssignsSequentialSeqPerListing(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	_, err := s.CreateListing(ctx, createTestListing("l-1", "A"))
	require.NoError(t, err)
	_, err = s.CreateListing(ctx, createTestListing("l-2", "B"))
	require.NoError(t, err)

	ev1, err := s.AppendEvent(ctx, createTestEvent("l-1", "Alice", domain.EventAdd, testNow))
	require.NoError(t, err)
	ev2, err := s.AppendEvent(ctx, createTestEvent("l-1", "Bob", domain.EventAdd, testNow))
	require.NoError(t, err)
	other, err := s.AppendEvent(ctx, createTestEvent("l-2", "Alice", domain.EventAdd, testNow))
	require.NoError(t, err)

	assert.Equal(t, int64(1), ev1.Seq)
	assert.Equal(t, int64(2), ev2.Seq)
	assert.Equal(t, int64(1), other.Seq)
}

func TestAppendEvent_GuardRejections(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	_, err := s.CreateListing(ctx, createTestListing("l-1", "A"))
	require.NoError(t, err)

	_, err = s.AppendEvent(ctx, createTestEvent("l-1", "Ghost", domain.EventRemove, testNow))
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = s.AppendEvent(ctx, createTestEvent("l-1", "Alice", domain.EventAdd, testNow))
	require.NoError(t, err)
	_, err = s.AppendEvent(ctx, createTestEvent("l-1", "Alice", domain.EventAdd, testNow))
	assert.ErrorIs(t, err, domain.ErrAlreadyInserted)

	_, err = s.AppendEvent(ctx, createTestEvent("l-1", "Alice", domain.EventRemove, testNow))
	require.NoError(t, err)
	_, err = s.AppendEvent(ctx, createTestEvent("l-1", "Alice", domain.EventRemove, testNow))
	assert.ErrorIs(t, err, domain.ErrAlreadyRemoved)

	// Rejected submissions leave no trace in the log.
	events, err := s.ReadEvents(ctx, "l-1")
	require.NoError(t, err)
	assert.Len(t, events, 2)
}

func TestAppendEvent_UnknownListing(t *testing.T) {
	s := createTestStore(t)

	_, err := s.AppendEvent(context.Background(), createTestEvent("missing", "Alice", domain.EventAdd, testNow))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAppendEvent_GuardIsPerParticipant(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	_, err := s.CreateListing(ctx, createTestListing("l-1", "A"))
	require.NoError(t, err)

	_, err = s.AppendEvent(ctx, createTestEvent("l-1", "Alice", domain.EventAdd, testNow))
	require.NoError(t, err)
	_, err = s.AppendEvent(ctx, createTestEvent("l-1", "Bob", domain.EventAdd, testNow))
	assert.NoError(t, err)
}

func TestAppendEvent_ConcurrentAddsAcceptOnlyOne(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	_, err := s.CreateListing(ctx, createTestListing("l-1", "A"))
	require.NoError(t, err)

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.AppendEvent(ctx, createTestEvent("l-1", "Alice", domain.EventAdd, testNow))
		}(i)
	}
	wg.Wait()

	accepted := 0
	for _, err := range errs {
		if err == nil {
			accepted++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrAlreadyInserted)
	}
	assert.Equal(t, 1, accepted)

	events, err := s.ReadEvents(ctx, "l-1")
	require.NoError(t, err)
	assert.Len(t, events, 1)
}
