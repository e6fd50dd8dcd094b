package ws

import (
	"encoding/json"

	"github.com/vish-intecai/translateo-server/internal/rooms"
)

// Client -> server event names.
const (
	EvRoomJoin        = "room:join"
	EvRoomLeave       = "room:leave"
	EvWebRTCOffer     = "webrtc:offer"
	EvWebRTCAnswer    = "webrtc:answer"
	EvWebRTCCandidate = "webrtc:ice-candidate"
	EvMediaToggle     = "media:toggle"
	EvConfigUpdate    = "config:update"
	EvTranscriptFinal = "transcript:final"
)

// Server -> client event names.
const (
	EvRoomJoined         = "room:joined"
	EvParticipantJoined  = "room:participant-joined"
	EvParticipantLeft    = "room:participant-left"
	EvTranscriptReceived = "transcript:received"
	EvError              = "error"
)

// Stable machine-readable error codes surfaced to clients.
const (
	CodeJoinError         = "JOIN_ERROR"
	CodeConfigUpdateError = "CONFIG_UPDATE_ERROR"
)

// Envelope frames every message in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type joinData struct {
	RoomID string                  `json:"roomId"`
	Config rooms.ParticipantConfig `json:"config"`
}

type leaveData struct {
	RoomID string `json:"roomId"`
	UserID string `json:"userId"`
}

// signalData reads only the routing field of a WebRTC payload; the payload
// itself is relayed verbatim.
type signalData struct {
	To string `json:"to"`
}

type mediaToggleData struct {
	RoomID string `json:"roomId"`
}

type configUpdateData struct {
	RoomID string                  `json:"roomId"`
	UserID string                  `json:"userId"`
	Config rooms.ParticipantUpdate `json:"config"`
}

type transcriptData struct {
	RoomID         string `json:"roomId"`
	UserID         string `json:"userId"`
	Text           string `json:"text"`
	SpokenLanguage string `json:"spokenLanguage"`
}

type roomJoinedData struct {
	RoomID       string              `json:"roomId"`
	UserID       string              `json:"userId"`
	Participants []rooms.Participant `json:"participants"`
}

type participantJoinedData struct {
	RoomID      string            `json:"roomId"`
	Participant rooms.Participant `json:"participant"`
}

type participantLeftData struct {
	RoomID   string `json:"roomId"`
	UserID   string `json:"userId"`
	Username string `json:"username,omitempty"`
}

type configUpdatedData struct {
	RoomID string                  `json:"roomId"`
	UserID string                  `json:"userId"`
	Config rooms.ParticipantUpdate `json:"config"`
}

type transcriptReceivedData struct {
	RoomID         string `json:"roomId"`
	UserID         string `json:"userId"`
	Text           string `json:"text"`
	SpokenLanguage string `json:"spokenLanguage"`
	Timestamp      int64  `json:"timestamp"`
}

type errorData struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// encode wraps data in an Envelope and marshals the frame.
func encode(event string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: event, Data: raw})
}
