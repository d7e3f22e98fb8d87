package events

import (
	"time"

	"github.com/go-monolith/mono/pkg/helper"
)

// MessageSentEvent is emitted when a message is accepted for a room.
// The relay stamps the ID and timestamp; the username is the sender's claim.
type MessageSentEvent struct {
	MessageID string    `json:"message_id"`
	Room      string    `json:"room"`
	Username  string    `json:"username"`
	Body      string    `json:"body"`
	Timestamp time.Time `json:"timestamp"`
}

// UserJoinedEvent is emitted when a user enters a room. OriginID names the
// joining connection so the hub can exclude it from delivery.
type UserJoinedEvent struct {
	Room     string `json:"room"`
	Username string `json:"username"`
	OriginID string `json:"origin_id"`
}

// UserLeftEvent is emitted when a user leaves a room, whether by explicit
// leave, logout, or connection loss.
type UserLeftEvent struct {
	Room     string `json:"room"`
	Username string `json:"username"`
	OriginID string `json:"origin_id"`
}

// RoomListChangedEvent carries the full replacement room-name list that is
// pushed to every connection whenever a room is created or deleted.
type RoomListChangedEvent struct {
	Rooms []string `json:"rooms"`
}

// RoomCountChangedEvent carries the current member count of one room,
// delivered to that room's subscribers.
type RoomCountChangedEvent struct {
	Room  string `json:"room"`
	Count int    `json:"count"`
}

// TotalUsersChangedEvent carries the global authenticated-user count,
// delivered to every connection.
type TotalUsersChangedEvent struct {
	Count int `json:"count"`
}

// Event definitions for the relay domain.
var (
	MessageSentV1 = helper.EventDefinition[MessageSentEvent](
		"relay",
		"MessageSent",
		"v1",
	)

	UserJoinedV1 = helper.EventDefinition[UserJoinedEvent](
		"relay",
		"UserJoined",
		"v1",
	)

	UserLeftV1 = helper.EventDefinition[UserLeftEvent](
		"relay",
		"UserLeft",
		"v1",
	)

	RoomListChangedV1 = helper.EventDefinition[RoomListChangedEvent](
		"relay",
		"RoomListChanged",
		"v1",
	)

	RoomCountChangedV1 = helper.EventDefinition[RoomCountChangedEvent](
		"relay",
		"RoomCountChanged",
		"v1",
	)

	TotalUsersChangedV1 = helper.EventDefinition[TotalUsersChangedEvent](
		"relay",
		"TotalUsersChanged",
		"v1",
	)
)
