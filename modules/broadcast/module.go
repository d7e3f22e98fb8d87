package broadcast

import (
	"context"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"

	"github.com/example/chat-relay/events"
)

// BroadcastModule consumes the relay's derived events from the bus and fans
// each one out to its audience through the WebSocket hub.
type BroadcastModule struct {
	hub    *Hub
	logger types.Logger
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*BroadcastModule)(nil)
	_ mono.EventConsumerModule   = (*BroadcastModule)(nil)
	_ mono.HealthCheckableModule = (*BroadcastModule)(nil)
)

// NewModule creates a new BroadcastModule.
func NewModule(logger types.Logger) *BroadcastModule {
	return &BroadcastModule{
		hub:    NewHub(logger),
		logger: logger,
	}
}

// Name returns the module name.
func (m *BroadcastModule) Name() string {
	return "broadcast"
}

// Start initializes the module.
func (m *BroadcastModule) Start(_ context.Context) error {
	m.logger.Info("Broadcast module started")
	return nil
}

// Stop closes every open connection.
func (m *BroadcastModule) Stop(_ context.Context) error {
	m.hub.Shutdown()
	m.logger.Info("Broadcast module stopped")
	return nil
}

// Health returns the health status.
func (m *BroadcastModule) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"connected_clients": m.hub.ClientCount(),
		},
	}
}

// GetHub returns the WebSocket hub for the gateway module to use.
func (m *BroadcastModule) GetHub() *Hub {
	return m.hub
}

// RegisterEventConsumers subscribes to the relay's derived events.
func (m *BroadcastModule) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(
		registry, events.MessageSentV1, m.handleMessageSent, m,
	); err != nil {
		return fmt.Errorf("failed to register MessageSent consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		registry, events.UserJoinedV1, m.handleUserJoined, m,
	); err != nil {
		return fmt.Errorf("failed to register UserJoined consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		registry, events.UserLeftV1, m.handleUserLeft, m,
	); err != nil {
		return fmt.Errorf("failed to register UserLeft consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		registry, events.RoomListChangedV1, m.handleRoomListChanged, m,
	); err != nil {
		return fmt.Errorf("failed to register RoomListChanged consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		registry, events.RoomCountChangedV1, m.handleRoomCountChanged, m,
	); err != nil {
		return fmt.Errorf("failed to register RoomCountChanged consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		registry, events.TotalUsersChangedV1, m.handleTotalUsersChanged, m,
	); err != nil {
		return fmt.Errorf("failed to register TotalUsersChanged consumer: %w", err)
	}

	m.logger.Info("Registered broadcast event consumers")
	return nil
}

// Event handlers. Encoding failures are logged and swallowed: a broadcast
// that cannot be built is no different from one dropped in flight.

func (m *BroadcastModule) handleMessageSent(_ context.Context, event events.MessageSentEvent, _ *mono.Msg) error {
	frame, err := EncodeFrame(EventMessage, MessagePayload{
		ID:        event.MessageID,
		Username:  event.Username,
		Message:   event.Body,
		Timestamp: event.Timestamp,
	})
	if err != nil {
		m.logger.Error("Failed to encode message frame", "error", err)
		return nil
	}
	// Sender is a subscriber too and receives its own message.
	m.hub.BroadcastRoom(event.Room, frame, "")
	return nil
}

func (m *BroadcastModule) handleUserJoined(_ context.Context, event events.UserJoinedEvent, _ *mono.Msg) error {
	frame, err := EncodeFrame(EventUserJoined, UserPayload{Username: event.Username})
	if err != nil {
		m.logger.Error("Failed to encode userJoined frame", "error", err)
		return nil
	}
	m.hub.BroadcastRoom(event.Room, frame, event.OriginID)
	return nil
}

func (m *BroadcastModule) handleUserLeft(_ context.Context, event events.UserLeftEvent, _ *mono.Msg) error {
	frame, err := EncodeFrame(EventUserLeft, UserPayload{Username: event.Username})
	if err != nil {
		m.logger.Error("Failed to encode userLeft frame", "error", err)
		return nil
	}
	m.hub.BroadcastRoom(event.Room, frame, event.OriginID)
	return nil
}

func (m *BroadcastModule) handleRoomListChanged(_ context.Context, event events.RoomListChangedEvent, _ *mono.Msg) error {
	rooms := event.Rooms
	if rooms == nil {
		rooms = []string{}
	}
	frame, err := EncodeFrame(EventRoomList, rooms)
	if err != nil {
		m.logger.Error("Failed to encode roomList frame", "error", err)
		return nil
	}
	m.hub.BroadcastAll(frame)
	return nil
}

func (m *BroadcastModule) handleRoomCountChanged(_ context.Context, event events.RoomCountChangedEvent, _ *mono.Msg) error {
	frame, err := EncodeFrame(EventRoomUsersCount, RoomCountPayload{
		Room:  event.Room,
		Count: event.Count,
	})
	if err != nil {
		m.logger.Error("Failed to encode roomUsersCount frame", "error", err)
		return nil
	}
	m.hub.BroadcastRoom(event.Room, frame, "")
	return nil
}

func (m *BroadcastModule) handleTotalUsersChanged(_ context.Context, event events.TotalUsersChangedEvent, _ *mono.Msg) error {
	frame, err := EncodeFrame(EventTotalUsers, event.Count)
	if err != nil {
		m.logger.Error("Failed to encode totalUsers frame", "error", err)
		return nil
	}
	m.hub.BroadcastAll(frame)
	return nil
}
