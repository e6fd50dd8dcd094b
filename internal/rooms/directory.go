// Package rooms owns all room and participant state. The directory is plain
// in-memory data with no I/O; handlers run on per-connection goroutines, so
// every method serializes on a single lock.
package rooms

import (
	"sync"
	"time"
)

// ParticipantConfig is the full set of fields a client supplies on join.
type ParticipantConfig struct {
	UserID            string `json:"userId"`
	RoomID            string `json:"roomId,omitempty"`
	Username          string `json:"username"`
	SpokenLanguage    string `json:"spokenLanguage"`
	HearingLanguage   string `json:"hearingLanguage"`
	VideoDelayEnabled bool   `json:"videoDelayEnabled"`
}

// ParticipantUpdate carries a partial config change. Nil fields are left
// untouched on the stored participant.
type ParticipantUpdate struct {
	Username          *string `json:"username,omitempty"`
	SpokenLanguage    *string `json:"spokenLanguage,omitempty"`
	HearingLanguage   *string `json:"hearingLanguage,omitempty"`
	VideoDelayEnabled *bool   `json:"videoDelayEnabled,omitempty"`
}

// Participant is one user's presence within a room.
type Participant struct {
	UserID            string `json:"userId"`
	Username          string `json:"username"`
	SpokenLanguage    string `json:"spokenLanguage"`
	HearingLanguage   string `json:"hearingLanguage"`
	VideoDelayEnabled bool   `json:"videoDelayEnabled"`
	JoinedAt          int64  `json:"joinedAt"` // unix ms, display/ordering only
}

type room struct {
	roomID       string
	participants map[string]Participant
	createdAt    int64
}

// Directory maps room IDs to their participant sets. Construct one per
// process with NewDirectory and pass it to the hub; there is no package
// singleton.
type Directory struct {
	mu    sync.RWMutex
	rooms map[string]*room
}

func NewDirectory() *Directory {
	return &Directory{rooms: make(map[string]*room)}
}

// getOrCreate returns the room, creating it lazily. Caller holds d.mu.
func (d *Directory) getOrCreate(roomID string) *room {
	r := d.rooms[roomID]
	if r == nil {
		r = &room{
			roomID:       roomID,
			participants: make(map[string]Participant),
			createdAt:    time.Now().UnixMilli(),
		}
		d.rooms[roomID] = r
	}
	return r
}

// RoomInfo is a point-in-time view of a room's metadata.
type RoomInfo struct {
	RoomID           string `json:"roomId"`
	CreatedAt        int64  `json:"createdAt"`
	ParticipantCount int    `json:"participantCount"`
}

// GetOrCreateRoom returns the room's metadata, creating an empty room first
// if the ID is unknown. Idempotent; never fails.
func (d *Directory) GetOrCreateRoom(roomID string) RoomInfo {
	d.mu.Lock()
	defer d.mu.Unlock()

	r := d.getOrCreate(roomID)
	return RoomInfo{RoomID: r.roomID, CreatedAt: r.createdAt, ParticipantCount: len(r.participants)}
}

// AddParticipant registers cfg.UserID in the room, creating the room if
// needed. A rejoin with an existing userId overwrites the prior record
// (last write wins) and re-stamps the join time.
func (d *Directory) AddParticipant(roomID string, cfg ParticipantConfig) Participant {
	d.mu.Lock()
	defer d.mu.Unlock()

	r := d.getOrCreate(roomID)
	p := Participant{
		UserID:            cfg.UserID,
		Username:          cfg.Username,
		SpokenLanguage:    cfg.SpokenLanguage,
		HearingLanguage:   cfg.HearingLanguage,
		VideoDelayEnabled: cfg.VideoDelayEnabled,
		JoinedAt:          time.Now().UnixMilli(),
	}
	r.participants[cfg.UserID] = p
	return p
}

// RemoveParticipant deletes the participant if present and reports whether a
// removal occurred. A room left empty is deleted with it, so the directory
// only ever holds currently-active rooms.
func (d *Directory) RemoveParticipant(roomID, userID string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	r := d.rooms[roomID]
	if r == nil {
		return false
	}
	_, ok := r.participants[userID]
	delete(r.participants, userID)
	if len(r.participants) == 0 {
		delete(d.rooms, roomID)
	}
	return ok
}

// GetParticipant is a pure lookup with no side effects.
func (d *Directory) GetParticipant(roomID, userID string) (Participant, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	r := d.rooms[roomID]
	if r == nil {
		return Participant{}, false
	}
	p, ok := r.participants[userID]
	return p, ok
}

// Participants returns a snapshot of the room's members, empty (never nil)
// when the room is absent.
func (d *Directory) Participants(roomID string) []Participant {
	d.mu.RLock()
	defer d.mu.RUnlock()

	r := d.rooms[roomID]
	if r == nil {
		return []Participant{}
	}
	out := make([]Participant, 0, len(r.participants))
	for _, p := range r.participants {
		out = append(out, p)
	}
	return out
}

// UpdateParticipant applies the non-nil fields of upd to the stored record
// and returns the result. The second return is false when the room or the
// participant does not exist; absence is the only failure mode.
func (d *Directory) UpdateParticipant(roomID, userID string, upd ParticipantUpdate) (Participant, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	r := d.rooms[roomID]
	if r == nil {
		return Participant{}, false
	}
	p, ok := r.participants[userID]
	if !ok {
		return Participant{}, false
	}
	if upd.Username != nil {
		p.Username = *upd.Username
	}
	if upd.SpokenLanguage != nil {
		p.SpokenLanguage = *upd.SpokenLanguage
	}
	if upd.HearingLanguage != nil {
		p.HearingLanguage = *upd.HearingLanguage
	}
	if upd.VideoDelayEnabled != nil {
		p.VideoDelayEnabled = *upd.VideoDelayEnabled
	}
	r.participants[userID] = p
	return p, true
}

// RoomCount reports how many rooms are currently active.
func (d *Directory) RoomCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.rooms)
}
