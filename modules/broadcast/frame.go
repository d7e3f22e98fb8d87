package broadcast

import (
	"encoding/json"
	"time"
)

// Frame is the server-to-client wire envelope: a named event plus its payload.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Server-to-client event names.
const (
	EventAuthenticated  = "authenticated"
	EventRoomList       = "roomList"
	EventRoomUsersCount = "roomUsersCount"
	EventTotalUsers     = "totalUsers"
	EventMessage        = "message"
	EventUserJoined     = "userJoined"
	EventUserLeft       = "userLeft"
)

// AuthResultPayload is the direct reply to an authenticate request.
type AuthResultPayload struct {
	Success bool `json:"success"`
}

// UserPayload names the user a membership notification is about.
type UserPayload struct {
	Username string `json:"username"`
}

// RoomCountPayload is a per-room member count update.
type RoomCountPayload struct {
	Room  string `json:"room"`
	Count int    `json:"count"`
}

// MessagePayload is a broadcast chat message.
type MessagePayload struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// EncodeFrame marshals an event name and payload into a wire frame.
func EncodeFrame(event string, data any) ([]byte, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Frame{Event: event, Data: payload})
}
