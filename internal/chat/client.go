package chat

import (
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time between keepalive pings
	pingPeriod = 30 * time.Second

	// Time allowed to read the next pong from the peer
	pongWait = 60 * time.Second

	// Maximum inbound envelope size in bytes
	maxEnvelopeSize = 64 * 1024

	// Buffer size for outgoing messages
	sendBufferSize = 256
)

// Client owns one websocket connection's write side. Everything queued on
// send is written by a single goroutine, so each subscriber receives
// payloads in queue order.
type Client struct {
	conn        *websocket.Conn
	send        chan []byte
	connectedAt time.Time
}

// NewClient wraps a websocket connection
func NewClient(conn *websocket.Conn) *Client {
	return &Client{
		conn:        conn,
		send:        make(chan []byte, sendBufferSize),
		connectedAt: time.Now(),
	}
}

// Send queues a payload for this client only. Returns false if the client's
// buffer is full; the caller treats that as an isolated delivery failure.
func (c *Client) Send(payload []byte) bool {
	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

// writePump drains the send queue to the connection and keeps it alive with
// pings. It exits when the hub closes the send channel or a write fails.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
