package relay

import "time"

// Message is an in-flight chat message. Messages are never stored; the
// struct exists only between arrival at the relay and fan-out to a room.
type Message struct {
	ID        string    `json:"id"`
	Room      string    `json:"room"`
	Username  string    `json:"username"`
	Body      string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// RoomInfo is a point-in-time view of a room: its name and how many
// users are currently members.
type RoomInfo struct {
	Name    string `json:"name"`
	Members int    `json:"members"`
}
