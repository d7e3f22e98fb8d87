package broadcast

import (
	"sync"

	"github.com/go-monolith/mono/pkg/types"
)

// Hub tracks every open connection and the per-room subscriber sets, and
// delivers frames to the three audience shapes the relay produces: a single
// connection, a room's subscribers, or everyone. Delivery is fire-and-forget:
// a frame that does not fit a client's buffer is dropped.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client         // clientID -> client
	rooms   map[string]map[string]bool // room -> set of clientIDs
	logger  types.Logger
}

// NewHub creates an empty hub.
func NewHub(logger types.Logger) *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		rooms:   make(map[string]map[string]bool),
		logger:  logger,
	}
}

// Register adds a client and starts its write pump. Clients are registered
// as soon as the socket opens; global broadcasts reach unauthenticated
// connections too.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c.ID] = c
	total := len(h.clients)
	h.mu.Unlock()

	if c.conn != nil {
		go c.writePump()
	}
	h.logger.Debug("Client registered", "clientID", c.ID, "total", total)
}

// Unregister removes a client from the hub and every room, then closes its
// send channel so the write pump finishes with a close frame. Idempotent.
func (h *Hub) Unregister(clientID string) {
	h.mu.Lock()
	c, ok := h.clients[clientID]
	if ok {
		delete(h.clients, clientID)
		c.closed = true
		h.dropSubscriptionsLocked(clientID)
	}
	total := len(h.clients)
	h.mu.Unlock()

	if ok {
		close(c.send)
		h.logger.Debug("Client unregistered", "clientID", clientID, "total", total)
	}
}

// Subscribe adds a connection to a room's broadcast audience.
func (h *Hub) Subscribe(clientID, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[clientID]; !ok {
		return
	}
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[string]bool)
	}
	h.rooms[room][clientID] = true
}

// Unsubscribe removes a connection from a room's broadcast audience.
func (h *Hub) Unsubscribe(clientID, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if members, ok := h.rooms[room]; ok {
		delete(members, clientID)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
}

// UnsubscribeAll removes a connection from every room audience. Run as part
// of the logout/disconnect cleanup pass.
func (h *Hub) UnsubscribeAll(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dropSubscriptionsLocked(clientID)
}

func (h *Hub) dropSubscriptionsLocked(clientID string) {
	for room, members := range h.rooms {
		delete(members, clientID)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
}

// SendTo queues a frame for a single connection: the direct-reply audience.
// Reports false if the client is gone or its buffer is full.
func (h *Hub) SendTo(clientID string, frame []byte) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.sendLocked(clientID, frame)
}

// BroadcastRoom queues a frame for every subscriber of a room. A non-empty
// exceptID skips the originating connection (joiner/leaver exclusion).
func (h *Hub) BroadcastRoom(room string, frame []byte, exceptID string) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for clientID := range h.rooms[room] {
		if clientID == exceptID {
			continue
		}
		h.sendLocked(clientID, frame)
	}
}

// BroadcastAll queues a frame for every connection, authenticated or not.
func (h *Hub) BroadcastAll(frame []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for clientID := range h.clients {
		h.sendLocked(clientID, frame)
	}
}

// sendLocked delivers under the read lock so Unregister (which needs the
// write lock) cannot close the channel mid-send.
func (h *Hub) sendLocked(clientID string, frame []byte) bool {
	c, ok := h.clients[clientID]
	if !ok || c.closed {
		return false
	}
	select {
	case c.send <- frame:
		return true
	default:
		h.logger.Warn("Dropping frame for slow client", "clientID", clientID)
		return false
	}
}

// ClientCount returns the number of open connections.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// RoomSubscriberCount returns the size of a room's broadcast audience.
func (h *Hub) RoomSubscriberCount(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// Shutdown closes every client connection and empties the hub.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
		c.closed = true
	}
	h.clients = make(map[string]*Client)
	h.rooms = make(map[string]map[string]bool)
	h.mu.Unlock()

	for _, c := range clients {
		close(c.send)
	}
	h.logger.Info("Hub shut down", "clients", len(clients))
}
