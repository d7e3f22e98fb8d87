package gateway

import (
	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/chat-relay/modules/broadcast"
	"github.com/example/chat-relay/modules/relay"
)

// Handlers contains the WebSocket entry point and the read-only REST
// handlers served next to it.
type Handlers struct {
	relay  *relay.Module
	hub    *broadcast.Hub
	logger types.Logger
}

// NewHandlers creates a new handlers instance.
func NewHandlers(relayModule *relay.Module, hub *broadcast.Hub, logger types.Logger) *Handlers {
	return &Handlers{
		relay:  relayModule,
		hub:    hub,
		logger: logger,
	}
}

// HandleWebSocket owns one connection for its whole life: it registers the
// client with the hub, then reads frames until the socket errors or closes,
// at which point the disconnect cleanup runs exactly as a logout would.
func (h *Handlers) HandleWebSocket(c *websocket.Conn) {
	clientID := uuid.New().String()
	client := broadcast.NewClient(clientID, c)
	h.hub.Register(client)

	sess := newSession(clientID, h.relay, h.hub, h.logger)
	defer func() {
		sess.disconnect()
		h.hub.Unregister(clientID)
		h.logger.Info("WebSocket disconnected", "clientID", clientID)
	}()

	h.logger.Info("WebSocket connected", "clientID", clientID)

	for {
		_, raw, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Error("WebSocket error", "clientID", clientID, "error", err)
			}
			break
		}
		sess.handleFrame(raw)
	}
}

// ListRooms handles GET /api/v1/rooms: names and current member counts.
func (h *Handlers) ListRooms(c *fiber.Ctx) error {
	rooms := h.relay.Rooms()
	return c.JSON(fiber.Map{
		"rooms": rooms,
		"total": len(rooms),
	})
}

// HealthCheck handles GET /health.
func (h *Handlers) HealthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":      "healthy",
		"service":     "chat-relay",
		"connections": h.hub.ClientCount(),
		"users":       h.relay.TotalUsers(),
	})
}
