package gateway

import (
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	sendBufferSize = 8
)

// Client is one WebSocket subscriber, pinned to a symbol/period pair.
type Client struct {
	conn   *websocket.Conn
	send   chan []byte
	symbol string
	period string
}

func newClient(conn *websocket.Conn, symbol, period string) *Client {
	return &Client{
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		symbol: symbol,
		period: period,
	}
}

// writePump pushes queued payloads and pings to the connection.
// Runs in its own goroutine; exits when the send channel closes.
func (c *Client) writePump(hub *Hub) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump discards inbound frames and unregisters on close.
// The feed is one-way; reading is only needed to notice disconnects.
func (c *Client) readPump(hub *Hub) {
	defer hub.unregister(c)

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
