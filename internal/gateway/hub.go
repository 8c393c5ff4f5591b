// Package gateway exposes the dashboard HTTP API: analysis requests,
// history, health, Prometheus metrics, and a WebSocket feed of refreshed
// analysis snapshots.
package gateway

import (
	"context"
	"log"
	"sync"

	"analysis-systemv1/internal/metrics"
)

// Hub tracks connected WebSocket clients and fans analysis snapshots out
// to the ones subscribed to the matching symbol/period.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]bool
	m       *metrics.Metrics
}

// NewHub creates an empty hub. m may be nil.
func NewHub(m *metrics.Metrics) *Hub {
	return &Hub{
		clients: make(map[*Client]bool),
		m:       m,
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	h.clients[c] = true
	n := len(h.clients)
	h.mu.Unlock()

	if h.m != nil {
		h.m.WSClients.Set(float64(n))
	}
	log.Printf("[gateway] ws client connected (%s/%s), %d total", c.symbol, c.period, n)
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	n := len(h.clients)
	h.mu.Unlock()

	if h.m != nil {
		h.m.WSClients.Set(float64(n))
	}
	log.Printf("[gateway] ws client disconnected, %d total", n)
}

// Broadcast delivers payload to every client subscribed to symbol/period.
// Slow clients are skipped rather than blocking the broadcaster.
func (h *Hub) Broadcast(symbol, period string, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		if c.symbol != symbol || c.period != period {
			continue
		}
		select {
		case c.send <- payload:
		default:
			// client send buffer full, drop this update
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Shutdown closes every client connection.
func (h *Hub) Shutdown(ctx context.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		c.conn.Close()
		delete(h.clients, c)
		close(c.send)
	}
}
