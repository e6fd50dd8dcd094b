package rooms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cfg(userID, username string) ParticipantConfig {
	return ParticipantConfig{
		UserID:          userID,
		Username:        username,
		SpokenLanguage:  "en",
		HearingLanguage: "es",
	}
}

func TestAddRemoveParticipantCounts(t *testing.T) {
	d := NewDirectory()

	d.AddParticipant("r1", cfg("alice", "Alice"))
	d.AddParticipant("r1", cfg("bob", "Bob"))
	// re-add of an existing userId must not double-count
	d.AddParticipant("r1", cfg("alice", "Alice2"))
	assert.Len(t, d.Participants("r1"), 2)

	assert.True(t, d.RemoveParticipant("r1", "alice"))
	assert.False(t, d.RemoveParticipant("r1", "alice"))
	assert.Len(t, d.Participants("r1"), 1)
}

func TestRejoinOverwrites(t *testing.T) {
	d := NewDirectory()

	d.AddParticipant("r1", cfg("alice", "Alice"))
	d.AddParticipant("r1", ParticipantConfig{UserID: "alice", Username: "Alicia", SpokenLanguage: "fr"})

	p, ok := d.GetParticipant("r1", "alice")
	require.True(t, ok)
	assert.Equal(t, "Alicia", p.Username)
	assert.Equal(t, "fr", p.SpokenLanguage)
}

func TestLastLeaveReclaimsRoom(t *testing.T) {
	d := NewDirectory()

	d.AddParticipant("r1", cfg("alice", "Alice"))
	assert.Equal(t, 1, d.RoomCount())

	assert.True(t, d.RemoveParticipant("r1", "alice"))
	assert.Equal(t, 0, d.RoomCount())
	assert.Empty(t, d.Participants("r1"))

	// the stale room must not resurrect participants
	_, ok := d.GetParticipant("r1", "alice")
	assert.False(t, ok)
}

func TestRemoveFromUnknownRoomIsNoop(t *testing.T) {
	d := NewDirectory()
	assert.False(t, d.RemoveParticipant("nope", "alice"))
}

func TestGetOrCreateRoomIdempotent(t *testing.T) {
	d := NewDirectory()

	a := d.GetOrCreateRoom("r1")
	b := d.GetOrCreateRoom("r1")
	assert.Equal(t, a.RoomID, b.RoomID)
	assert.Equal(t, a.CreatedAt, b.CreatedAt)
	assert.Equal(t, 1, d.RoomCount())
}

func TestUpdateParticipantPartial(t *testing.T) {
	d := NewDirectory()
	d.AddParticipant("r1", cfg("alice", "Alice"))

	// empty update returns the unchanged record
	p, ok := d.UpdateParticipant("r1", "alice", ParticipantUpdate{})
	require.True(t, ok)
	assert.Equal(t, "Alice", p.Username)
	assert.Equal(t, "en", p.SpokenLanguage)
	assert.Equal(t, "es", p.HearingLanguage)

	// only spokenLanguage changes, everything else keeps its prior value
	de := "de"
	p, ok = d.UpdateParticipant("r1", "alice", ParticipantUpdate{SpokenLanguage: &de})
	require.True(t, ok)
	assert.Equal(t, "de", p.SpokenLanguage)
	assert.Equal(t, "Alice", p.Username)
	assert.Equal(t, "es", p.HearingLanguage)
	assert.False(t, p.VideoDelayEnabled)

	delay := true
	p, ok = d.UpdateParticipant("r1", "alice", ParticipantUpdate{VideoDelayEnabled: &delay})
	require.True(t, ok)
	assert.True(t, p.VideoDelayEnabled)
	assert.Equal(t, "de", p.SpokenLanguage)
}

func TestUpdateParticipantAbsent(t *testing.T) {
	d := NewDirectory()

	_, ok := d.UpdateParticipant("r1", "alice", ParticipantUpdate{})
	assert.False(t, ok)

	d.AddParticipant("r1", cfg("alice", "Alice"))
	_, ok = d.UpdateParticipant("r1", "bob", ParticipantUpdate{})
	assert.False(t, ok)
}

func TestJoinLeaveJoinYieldsSingleEntry(t *testing.T) {
	d := NewDirectory()

	d.AddParticipant("r1", cfg("alice", "Alice"))
	d.RemoveParticipant("r1", "alice")
	d.AddParticipant("r1", cfg("alice", "Alice"))

	ps := d.Participants("r1")
	require.Len(t, ps, 1)
	assert.Equal(t, "alice", ps[0].UserID)
}
