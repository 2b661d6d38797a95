package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventTypeText(t *testing.T) {
	var et EventType
	require.NoError(t, et.UnmarshalText([]byte("ADD")))
	assert.Equal(t, EventAdd, et)
	require.NoError(t, et.UnmarshalText([]byte("remove")))
	assert.Equal(t, EventRemove, et)
	assert.Error(t, et.UnmarshalText([]byte("toggle")))

	_, err := EventType(7).MarshalText()
	assert.Error(t, err)
	assert.Equal(t, "EventType(7)", EventType(7).String())
}

func TestParticipantKindText(t *testing.T) {
	var k ParticipantKind
	require.NoError(t, k.UnmarshalText([]byte("invitee")))
	assert.Equal(t, KindInvitee, k)
	require.NoError(t, k.UnmarshalText([]byte("Main")))
	assert.Equal(t, KindMain, k)
	assert.Error(t, k.UnmarshalText([]byte("guest")))

	assert.Equal(t, KindInvitee, KindFor(true))
	assert.Equal(t, KindMain, KindFor(false))
}

func TestEventJSONUsesWireNames(t *testing.T) {
	ev := Event{
		ListingID:       "l-1",
		Seq:             3,
		ParticipantName: "Alice",
		Type:            EventAdd,
		Kind:            KindInvitee,
		Timestamp:       time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC),
	}

	data, err := json.Marshal(ev)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"listing_id": "l-1",
		"seq": 3,
		"participant_name": "Alice",
		"type": "add",
		"participant_kind": "invitee",
		"timestamp": "2026-03-01T18:00:00Z"
	}`, string(data))

	var back Event
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, ev, back)
}

func TestListingOptionalFields(t *testing.T) {
	l := Listing{ID: "l-1", Name: "Thursday volley"}
	_, ok := l.Capacity()
	assert.False(t, ok)
	_, ok = l.Cutoff()
	assert.False(t, ok)

	size := 12
	cutoff := time.Date(2026, 3, 5, 12, 0, 0, 0, time.UTC)
	l.MaxSize = &size
	l.CutoffDate = &cutoff

	c, ok := l.Capacity()
	assert.True(t, ok)
	assert.Equal(t, 12, c)
	got, ok := l.Cutoff()
	assert.True(t, ok)
	assert.True(t, cutoff.Equal(got))
}

func TestComputedListingIsPaying(t *testing.T) {
	c := ComputedListing{
		PayingParticipants: []Participant{{Name: "Alice"}, {Name: "Bob", IsInvitee: true}},
	}
	assert.True(t, c.IsPaying("Bob"))
	assert.False(t, c.IsPaying("Carol"))
	assert.Equal(t, []string{"Alice", "Bob"}, Names(c.PayingParticipants))
}
