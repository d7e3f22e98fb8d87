package gateway

import "encoding/json"

// ClientFrame is the client-to-server wire envelope: a named event plus its
// payload. Unrecognized events are dropped without a reply; the relay never
// closes a connection for malformed traffic.
type ClientFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Client-to-server event names.
const (
	eventAuthenticate = "authenticate"
	eventCreateRoom   = "createRoom"
	eventJoinRoom     = "joinRoom"
	eventLeaveRoom    = "leaveRoom"
	eventMessage      = "message"
	eventLogout       = "logout"
)

// AuthenticatePayload carries the display name a connection wants to claim.
type AuthenticatePayload struct {
	Username string `json:"username"`
}

// RoomPayload names the room a create/join/leave request targets.
type RoomPayload struct {
	RoomName string `json:"roomName"`
}

// ChatMessagePayload is an inbound chat message. The username is the
// sender's claim and is relayed without verification.
type ChatMessagePayload struct {
	Room     string `json:"room"`
	Message  string `json:"message"`
	Username string `json:"username"`
}
