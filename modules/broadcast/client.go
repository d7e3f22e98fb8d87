package broadcast

import (
	"github.com/gofiber/contrib/websocket"
)

// sendBufferSize bounds the per-client outbound queue. A client that cannot
// drain this many frames starts losing broadcasts; delivery is best effort.
const sendBufferSize = 256

// Client represents one WebSocket connection known to the hub. The hub owns
// its lifecycle: frames are queued on the send channel and drained to the
// socket by a write pump, so no two goroutines ever write the socket
// concurrently.
type Client struct {
	ID     string
	conn   *websocket.Conn
	send   chan []byte
	closed bool
}

// NewClient wraps a WebSocket connection for hub management.
func NewClient(id string, conn *websocket.Conn) *Client {
	return &Client{
		ID:   id,
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}
}

// SendChan exposes the outbound queue for reading. Used by tests that
// observe delivery without a live socket.
func (c *Client) SendChan() <-chan []byte {
	return c.send
}

// writePump drains the send channel to the socket. It exits when the hub
// closes the channel (sending a close frame) or when a write fails.
func (c *Client) writePump() {
	defer c.conn.Close()

	for frame := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			return
		}
	}
	_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}
