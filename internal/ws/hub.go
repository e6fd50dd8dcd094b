package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"log/slog"

	"github.com/vish-intecai/translateo-server/internal/rooms"
	"github.com/vish-intecai/translateo-server/pkg/metrics"
)

// Hub binds live connections to the room directory and fans events out
// through the delivery-group registry. The directory is the single source of
// truth for membership; the hub owns connection identities exclusively.
type Hub struct {
	log    *slog.Logger
	dir    *rooms.Directory
	groups *Groups
	bus    *TranscriptBus // nil when Redis is not configured
}

// session is the per-connection identity: at most one (roomID, userID) pair
// a connection has successfully joined as. It is the authorization anchor
// for every room-scoped action on that connection, and only the
// connection's own read goroutine touches it.
type session struct {
	conn   *Conn
	roomID string
	userID string
}

func (s *session) bound() bool { return s.roomID != "" && s.userID != "" }

func NewHub(logger *slog.Logger, dir *rooms.Directory, groups *Groups, bus *TranscriptBus) *Hub {
	return &Hub{log: logger, dir: dir, groups: groups, bus: bus}
}

// ServeWS handles a new /ws connection: upgrade, pump frames through the
// dispatcher, and treat connection loss as an implicit leave.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	conn, err := Accept(w, r)
	if err != nil {
		h.log.Error("ws.accept", "err", err)
		return
	}

	c := NewConn(conn)
	sess := &session{conn: c}
	metrics.ConnectionsActive.Inc()
	h.log.Info("ws.connected", "conn", c.ID())

	// Outbound writer
	go c.WriteLoop(ctx)

	// Inbound reader: every handler runs to completion on this goroutine
	for {
		payload, ok := c.Read(ctx)
		if !ok {
			break
		}
		h.dispatch(ctx, sess, payload)
	}

	h.disconnect(sess)
	h.groups.Drop(c)
	metrics.ConnectionsActive.Dec()
	h.log.Info("ws.disconnected", "conn", c.ID())
	_ = c.Close()
}

// dispatch decodes the envelope and routes to the event handler. Unknown or
// malformed frames are dropped; nothing a single client sends may take the
// process down.
func (h *Hub) dispatch(ctx context.Context, sess *session, payload []byte) {
	var env Envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		h.log.Debug("ws.frame.malformed", "conn", sess.conn.ID(), "err", err)
		metrics.EventsDropped.WithLabelValues("malformed").Inc()
		return
	}
	metrics.EventsTotal.WithLabelValues(env.Event).Inc()

	switch env.Event {
	case EvRoomJoin:
		h.handleJoin(sess, env.Data)
	case EvRoomLeave:
		h.handleLeave(sess, env.Data)
	case EvWebRTCOffer, EvWebRTCAnswer, EvWebRTCCandidate:
		h.handleSignal(sess, env.Event, env.Data)
	case EvMediaToggle:
		h.handleMediaToggle(sess, env.Event, env.Data)
	case EvConfigUpdate:
		h.handleConfigUpdate(sess, env.Data)
	case EvTranscriptFinal:
		h.handleTranscript(ctx, sess, env.Data)
	default:
		h.log.Debug("ws.event.unknown", "conn", sess.conn.ID(), "event", env.Event)
		metrics.EventsDropped.WithLabelValues("unknown_event").Inc()
	}
}

// handleJoin registers the participant, binds the connection identity, and
// subscribes the connection to the room group plus its own user group (the
// latter carries point-to-point signaling). Any failure is reported to the
// joining connection only.
func (h *Hub) handleJoin(sess *session, data json.RawMessage) {
	var in joinData
	if err := json.Unmarshal(data, &in); err != nil || in.RoomID == "" || in.Config.UserID == "" {
		h.log.Warn("ws.join.invalid", "conn", sess.conn.ID(), "err", err)
		h.sendError(sess.conn, "Failed to join room", CodeJoinError)
		return
	}

	h.log.Info("ws.join", "room", in.RoomID, "user", in.Config.UserID)

	p := h.dir.AddParticipant(in.RoomID, in.Config)
	sess.roomID = in.RoomID
	sess.userID = in.Config.UserID
	h.groups.Subscribe(sess.conn, roomGroup(in.RoomID))
	h.groups.Subscribe(sess.conn, userGroup(in.Config.UserID))
	metrics.RoomsActive.Set(float64(h.dir.RoomCount()))

	joined, err := encode(EvRoomJoined, roomJoinedData{
		RoomID:       in.RoomID,
		UserID:       in.Config.UserID,
		Participants: h.dir.Participants(in.RoomID),
	})
	if err != nil {
		h.log.Error("ws.join.encode", "room", in.RoomID, "err", err)
		h.sendError(sess.conn, "Failed to join room", CodeJoinError)
		return
	}
	sess.conn.enqueue(joined)

	notify, err := encode(EvParticipantJoined, participantJoinedData{RoomID: in.RoomID, Participant: p})
	if err != nil {
		h.log.Error("ws.join.encode", "room", in.RoomID, "err", err)
		h.sendError(sess.conn, "Failed to join room", CodeJoinError)
		return
	}
	h.groups.EmitExcept(roomGroup(in.RoomID), notify, sess.conn)
}

// handleLeave removes the named participant and tells the rest of the room.
// Deliberately lenient: the payload identity is trusted without checking it
// against the connection's own, matching the original protocol; worst case
// is a spurious leave notification.
func (h *Hub) handleLeave(sess *session, data json.RawMessage) {
	var in leaveData
	if err := json.Unmarshal(data, &in); err != nil {
		metrics.EventsDropped.WithLabelValues("malformed").Inc()
		return
	}

	username := "Someone"
	if p, ok := h.dir.GetParticipant(in.RoomID, in.UserID); ok {
		username = p.Username
	}
	h.log.Info("ws.leave", "room", in.RoomID, "user", in.UserID, "username", username)

	h.dir.RemoveParticipant(in.RoomID, in.UserID)
	h.groups.Unsubscribe(sess.conn, roomGroup(in.RoomID))
	h.groups.Unsubscribe(sess.conn, userGroup(in.UserID))
	sess.roomID = ""
	sess.userID = ""
	metrics.RoomsActive.Set(float64(h.dir.RoomCount()))

	h.notifyLeft(in.RoomID, in.UserID, username, sess.conn)
}

// handleSignal relays a WebRTC payload verbatim to the destination user's
// delivery group, excluding the sender. The payload body is opaque to the
// server; only the routing field is read.
func (h *Hub) handleSignal(sess *session, event string, data json.RawMessage) {
	var in signalData
	if err := json.Unmarshal(data, &in); err != nil || in.To == "" {
		metrics.EventsDropped.WithLabelValues("malformed").Inc()
		return
	}
	frame, err := json.Marshal(Envelope{Event: event, Data: data})
	if err != nil {
		return
	}
	h.groups.EmitExcept(userGroup(in.To), frame, sess.conn)
}

// handleMediaToggle forwards the toggle to the rest of the room iff the
// sender's bound room matches the payload. Only the roomId is checked here,
// unlike config:update and transcript:final; the toggle is ephemeral UI
// state and the looser rule is part of the protocol.
func (h *Hub) handleMediaToggle(sess *session, event string, data json.RawMessage) {
	var in mediaToggleData
	if err := json.Unmarshal(data, &in); err != nil || in.RoomID == "" || sess.roomID != in.RoomID {
		metrics.EventsDropped.WithLabelValues("unauthorized").Inc()
		return
	}
	frame, err := json.Marshal(Envelope{Event: event, Data: data})
	if err != nil {
		return
	}
	h.groups.EmitExcept(roomGroup(in.RoomID), frame, sess.conn)
}

// handleConfigUpdate mutates the participant record iff the sender's bound
// identity matches both roomId and userId, then broadcasts the applied
// partial config to the whole room including the sender, which needs the
// authoritative confirmation. Identity mismatches are dropped silently.
func (h *Hub) handleConfigUpdate(sess *session, data json.RawMessage) {
	var in configUpdateData
	if err := json.Unmarshal(data, &in); err != nil || in.RoomID == "" ||
		sess.roomID != in.RoomID || sess.userID != in.UserID {
		metrics.EventsDropped.WithLabelValues("unauthorized").Inc()
		return
	}

	if _, ok := h.dir.UpdateParticipant(in.RoomID, in.UserID, in.Config); !ok {
		h.sendError(sess.conn, "Failed to update config", CodeConfigUpdateError)
		return
	}
	h.log.Info("ws.config_update", "room", in.RoomID, "user", in.UserID)

	frame, err := encode(EvConfigUpdate, configUpdatedData{RoomID: in.RoomID, UserID: in.UserID, Config: in.Config})
	if err != nil {
		h.sendError(sess.conn, "Failed to update config", CodeConfigUpdateError)
		return
	}
	h.groups.Emit(roomGroup(in.RoomID), frame)
}

// handleTranscript broadcasts a final transcript to the whole room with a
// server-assigned delivery timestamp, under the same strict identity rule
// as config:update. No directory mutation.
func (h *Hub) handleTranscript(ctx context.Context, sess *session, data json.RawMessage) {
	var in transcriptData
	if err := json.Unmarshal(data, &in); err != nil || in.RoomID == "" ||
		sess.roomID != in.RoomID || sess.userID != in.UserID {
		metrics.EventsDropped.WithLabelValues("unauthorized").Inc()
		return
	}

	out := transcriptReceivedData{
		RoomID:         in.RoomID,
		UserID:         in.UserID,
		Text:           in.Text,
		SpokenLanguage: in.SpokenLanguage,
		Timestamp:      time.Now().UnixMilli(),
	}
	frame, err := encode(EvTranscriptReceived, out)
	if err != nil {
		return
	}
	h.log.Debug("ws.transcript", "room", in.RoomID, "user", in.UserID, "lang", in.SpokenLanguage)
	h.groups.Emit(roomGroup(in.RoomID), frame)

	h.bus.Publish(ctx, TranscriptEvent{
		RoomID:         out.RoomID,
		UserID:         out.UserID,
		Text:           out.Text,
		SpokenLanguage: out.SpokenLanguage,
		Timestamp:      out.Timestamp,
	})
}

// disconnect treats connection loss as an implicit leave for whatever
// identity the connection held. Group membership is torn down by the caller
// via Drop, so no explicit unsubscribe happens here.
func (h *Hub) disconnect(sess *session) {
	if !sess.bound() {
		return
	}
	roomID, userID := sess.roomID, sess.userID
	sess.roomID = ""
	sess.userID = ""

	username := "Someone"
	if p, ok := h.dir.GetParticipant(roomID, userID); ok {
		username = p.Username
	}
	h.log.Info("ws.disconnect_leave", "room", roomID, "user", userID, "username", username)

	h.dir.RemoveParticipant(roomID, userID)
	metrics.RoomsActive.Set(float64(h.dir.RoomCount()))
	h.notifyLeft(roomID, userID, username, sess.conn)
}

// notifyLeft emits room:participant-left to the room, excluding the leaver.
func (h *Hub) notifyLeft(roomID, userID, username string, skip *Conn) {
	frame, err := encode(EvParticipantLeft, participantLeftData{RoomID: roomID, UserID: userID, Username: username})
	if err != nil {
		return
	}
	h.groups.EmitExcept(roomGroup(roomID), frame, skip)
}

// sendError reports a structured error to one connection only.
func (h *Hub) sendError(c *Conn, message, code string) {
	frame, err := encode(EvError, errorData{Message: message, Code: code})
	if err != nil {
		return
	}
	c.enqueue(frame)
}
