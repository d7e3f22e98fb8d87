package relay

import (
	"context"
	"time"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/google/uuid"

	domain "github.com/example/chat-relay/domain/relay"
	"github.com/example/chat-relay/events"
)

// Module is the relay core: it owns the connection registry and room
// directory and publishes audience-scoped derived events on the bus.
// State is never exposed for direct mutation; every change goes through
// one of the operation methods below.
type Module struct {
	state    *State
	eventBus mono.EventBus
	logger   types.Logger
}

// Compile-time interface checks
var (
	_ mono.Module              = (*Module)(nil)
	_ mono.EventBusAwareModule = (*Module)(nil)
	_ mono.EventEmitterModule  = (*Module)(nil)
)

// NewModule creates a new relay module.
func NewModule(logger types.Logger) *Module {
	return &Module{
		state:  NewState(),
		logger: logger,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "relay"
}

// SetEventBus receives the EventBus from the framework.
func (m *Module) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

// EmitEvents declares the events this module can emit.
func (m *Module) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.MessageSentV1.ToBase(),
		events.UserJoinedV1.ToBase(),
		events.UserLeftV1.ToBase(),
		events.RoomListChangedV1.ToBase(),
		events.RoomCountChangedV1.ToBase(),
		events.TotalUsersChangedV1.ToBase(),
	}
}

// Start initializes the relay module.
func (m *Module) Start(_ context.Context) error {
	m.logger.Info("Relay module started")
	return nil
}

// Stop gracefully shuts down the module.
func (m *Module) Stop(_ context.Context) error {
	m.logger.Info("Relay module stopped")
	return nil
}

// Authenticate claims a display name for a connection. The boolean is the
// only structured rejection the relay ever reports to a client.
func (m *Module) Authenticate(username string) bool {
	ok := m.state.Authenticate(username)
	if ok {
		m.logger.Info("Username accepted", "username", username)
	} else {
		m.logger.Info("Username rejected", "username", username)
	}
	return ok
}

// RoomNames returns the sorted names of all rooms.
func (m *Module) RoomNames() []string {
	return m.state.RoomNames()
}

// TotalUsers returns the number of currently-authenticated users.
func (m *Module) TotalUsers() int {
	return m.state.TotalUsers()
}

// MemberCount returns a room's current member count.
func (m *Module) MemberCount(room string) int {
	return m.state.MemberCount(room)
}

// RoomExists reports whether a room is present in the directory.
func (m *Module) RoomExists(room string) bool {
	return m.state.RoomExists(room)
}

// Rooms returns a snapshot of every room with its member count.
func (m *Module) Rooms() []domain.RoomInfo {
	names := m.state.RoomNames()
	infos := make([]domain.RoomInfo, 0, len(names))
	for _, name := range names {
		infos = append(infos, domain.RoomInfo{
			Name:    name,
			Members: m.state.MemberCount(name),
		})
	}
	return infos
}

// CreateRoom inserts a room and pushes the updated room list to every
// connection. Creating an existing room is a silent no-op.
func (m *Module) CreateRoom(name string) {
	if !m.state.CreateRoom(name) {
		return
	}
	m.logger.Info("Room created", "room", name)
	m.publishRoomList()
}

// JoinRoom adds a user to a room, notifies the other members, and pushes the
// updated member count to the room. Unknown rooms are a silent no-op.
func (m *Module) JoinRoom(room, username, originID string) bool {
	count, ok := m.state.JoinRoom(room, username)
	if !ok {
		return false
	}

	if m.eventBus != nil {
		event := events.UserJoinedEvent{Room: room, Username: username, OriginID: originID}
		if err := events.UserJoinedV1.Publish(m.eventBus, event, nil); err != nil {
			m.logger.Warn("Failed to publish UserJoined event", "error", err)
		}
	}
	m.publishRoomCount(room, count)

	m.logger.Info("User joined room", "username", username, "room", room, "count", count)
	return true
}

// LeaveRoom removes a user from a room, notifies the remaining members, and
// either deletes the now-empty room (pushing a fresh room list to everyone)
// or pushes the updated member count to the room.
func (m *Module) LeaveRoom(room, username, originID string) bool {
	res := m.state.LeaveRoom(room, username)
	if !res.Existed {
		return false
	}

	// The room notifications fire even when the leaver was never a member;
	// the other members are told regardless.
	m.publishUserLeft(room, username, originID)

	if res.Deleted {
		m.logger.Info("Room deleted", "room", room)
		m.publishRoomList()
	} else {
		m.publishRoomCount(room, res.Count)
	}

	m.logger.Info("User left room", "username", username, "room", room)
	return res.Left
}

// PostMessage accepts a message for an existing room, stamps an ID and a
// server-side timestamp, and broadcasts it to every subscriber of the room,
// sender included. Neither authentication nor membership is verified; the
// claimed username is relayed as-is. Unknown rooms are a silent no-op.
func (m *Module) PostMessage(room, username, body string) (*domain.Message, bool) {
	if !m.state.RoomExists(room) {
		return nil, false
	}

	msg := &domain.Message{
		ID:        uuid.New().String(),
		Room:      room,
		Username:  username,
		Body:      body,
		Timestamp: time.Now().UTC(),
	}

	if m.eventBus != nil {
		event := events.MessageSentEvent{
			MessageID: msg.ID,
			Room:      msg.Room,
			Username:  msg.Username,
			Body:      msg.Body,
			Timestamp: msg.Timestamp,
		}
		if err := events.MessageSentV1.Publish(m.eventBus, event, nil); err != nil {
			m.logger.Warn("Failed to publish MessageSent event", "error", err)
		}
	}

	m.logger.Debug("Message relayed", "room", room, "username", username, "messageID", msg.ID)
	return msg, true
}

// Logout releases a user's name and runs the full cleanup pass: the user is
// removed from every room (with the same notifications an explicit leave
// produces) and the updated total-user count goes to every connection.
// Idempotent; a connection that never authenticated passes an empty name
// and nothing happens.
func (m *Module) Logout(username, originID string) {
	if username == "" || !m.state.IsActive(username) {
		return
	}

	m.state.Deauthenticate(username)
	cleanups := m.state.RemoveFromAllRooms(username)

	roomListDirty := false
	for _, res := range cleanups {
		m.publishUserLeft(res.Room, username, originID)
		if res.Deleted {
			roomListDirty = true
		} else {
			m.publishRoomCount(res.Room, res.Count)
		}
	}
	if roomListDirty {
		m.publishRoomList()
	}

	if m.eventBus != nil {
		event := events.TotalUsersChangedEvent{Count: m.state.TotalUsers()}
		if err := events.TotalUsersChangedV1.Publish(m.eventBus, event, nil); err != nil {
			m.logger.Warn("Failed to publish TotalUsersChanged event", "error", err)
		}
	}

	m.logger.Info("User logged out", "username", username, "rooms", len(cleanups))
}

// Event publishing is best-effort throughout: a fan-out failure is logged
// and never surfaced to the client that triggered the mutation.

func (m *Module) publishUserLeft(room, username, originID string) {
	if m.eventBus == nil {
		return
	}
	event := events.UserLeftEvent{Room: room, Username: username, OriginID: originID}
	if err := events.UserLeftV1.Publish(m.eventBus, event, nil); err != nil {
		m.logger.Warn("Failed to publish UserLeft event", "error", err)
	}
}

func (m *Module) publishRoomList() {
	if m.eventBus == nil {
		return
	}
	event := events.RoomListChangedEvent{Rooms: m.state.RoomNames()}
	if err := events.RoomListChangedV1.Publish(m.eventBus, event, nil); err != nil {
		m.logger.Warn("Failed to publish RoomListChanged event", "error", err)
	}
}

func (m *Module) publishRoomCount(room string, count int) {
	if m.eventBus == nil {
		return
	}
	event := events.RoomCountChangedEvent{Room: room, Count: count}
	if err := events.RoomCountChangedV1.Publish(m.eventBus, event, nil); err != nil {
		m.logger.Warn("Failed to publish RoomCountChanged event", "error", err)
	}
}
