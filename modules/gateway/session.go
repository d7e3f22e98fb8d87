package gateway

import (
	"encoding/json"

	"github.com/go-monolith/mono/pkg/types"

	"github.com/example/chat-relay/modules/broadcast"
	"github.com/example/chat-relay/modules/relay"
)

// session is the per-connection state machine: one per WebSocket, driven
// entirely by the connection's read loop, so its fields need no locking.
// The username is a weak reference; the relay's registry is the source of
// truth for whether the name is actually active.
type session struct {
	id       string
	username string
	relay    *relay.Module
	hub      *broadcast.Hub
	logger   types.Logger
}

func newSession(id string, relayModule *relay.Module, hub *broadcast.Hub, logger types.Logger) *session {
	return &session{
		id:     id,
		relay:  relayModule,
		hub:    hub,
		logger: logger,
	}
}

// handleFrame decodes one inbound frame and dispatches it. Malformed frames
// and unhandled events degrade to silent no-ops.
func (s *session) handleFrame(raw []byte) {
	var frame ClientFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		s.logger.Debug("Dropping malformed frame", "clientID", s.id, "error", err)
		return
	}

	switch frame.Event {
	case eventAuthenticate:
		s.handleAuthenticate(frame.Data)
	case eventCreateRoom:
		s.handleCreateRoom(frame.Data)
	case eventJoinRoom:
		s.handleJoinRoom(frame.Data)
	case eventLeaveRoom:
		s.handleLeaveRoom(frame.Data)
	case eventMessage:
		s.handleMessage(frame.Data)
	case eventLogout:
		s.handleLogout()
	default:
		// Rich client events (reactions, pins, typing, ...) have no relay
		// handler; they are client-local and dropped here.
		s.logger.Debug("Ignoring unhandled client event", "clientID", s.id, "event", frame.Event)
	}
}

// handleAuthenticate claims a display name. This is the only operation with
// a structured reply; on success the connection also receives the current
// room directory and the total user count.
func (s *session) handleAuthenticate(data json.RawMessage) {
	var payload AuthenticatePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		s.reply(broadcast.EventAuthenticated, broadcast.AuthResultPayload{Success: false})
		return
	}

	success := s.relay.Authenticate(payload.Username)
	s.reply(broadcast.EventAuthenticated, broadcast.AuthResultPayload{Success: success})
	if !success {
		return
	}

	// Re-authenticating under a new name vacates the old one first.
	if s.username != "" && s.username != payload.Username {
		s.relay.Logout(s.username, s.id)
		s.hub.UnsubscribeAll(s.id)
	}
	s.username = payload.Username

	s.reply(broadcast.EventRoomList, s.relay.RoomNames())
	s.reply(broadcast.EventTotalUsers, s.relay.TotalUsers())
}

func (s *session) handleCreateRoom(data json.RawMessage) {
	var payload RoomPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return
	}
	s.relay.CreateRoom(payload.RoomName)
}

func (s *session) handleJoinRoom(data json.RawMessage) {
	var payload RoomPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return
	}
	if s.username == "" || !s.relay.RoomExists(payload.RoomName) {
		return
	}

	// Subscribe before the membership mutation so the joiner is in the
	// audience for the count broadcast the join produces.
	s.hub.Subscribe(s.id, payload.RoomName)
	if !s.relay.JoinRoom(payload.RoomName, s.username, s.id) {
		s.hub.Unsubscribe(s.id, payload.RoomName)
	}
}

func (s *session) handleLeaveRoom(data json.RawMessage) {
	var payload RoomPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return
	}
	if s.username == "" || !s.relay.RoomExists(payload.RoomName) {
		return
	}

	// Leave the audience first: the departing connection gets neither the
	// userLeft notification nor the trailing count update.
	s.hub.Unsubscribe(s.id, payload.RoomName)
	s.relay.LeaveRoom(payload.RoomName, s.username, s.id)
}

func (s *session) handleMessage(data json.RawMessage) {
	var payload ChatMessagePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return
	}
	// Only room existence is checked; the claimed username is trusted.
	s.relay.PostMessage(payload.Room, payload.Username, payload.Message)
}

// handleLogout vacates the display name and runs the full room cleanup while
// keeping the socket open so the client can authenticate again.
func (s *session) handleLogout() {
	if s.username == "" {
		return
	}
	s.relay.Logout(s.username, s.id)
	s.hub.UnsubscribeAll(s.id)
	s.username = ""
}

// disconnect runs the logout cleanup for a connection that is going away.
func (s *session) disconnect() {
	s.handleLogout()
}

// reply queues a frame for this connection only.
func (s *session) reply(event string, data any) {
	frame, err := broadcast.EncodeFrame(event, data)
	if err != nil {
		s.logger.Error("Failed to encode reply frame", "event", event, "error", err)
		return
	}
	s.hub.SendTo(s.id, frame)
}
