// Package websocket pushes live game events (recorded sessions, balance
// changes) to connected clients so open tabs can refresh history and balance
// without polling.
package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// Message is a real-time event broadcast to all connected clients.
type Message struct {
	Type   string         `json:"type"`
	UserID int64          `json:"userId,omitempty"`
	Extra  map[string]any `json:"extra,omitempty"`
}

// SessionRecorded announces a newly recorded game session and the user's
// resulting balance.
func SessionRecorded(userID, sessionID int64, balance string) Message {
	return Message{
		Type:   "session_recorded",
		UserID: userID,
		Extra: map[string]any{
			"sessionId": sessionID,
			"balance":   balance,
		},
	}
}

// BalanceUpdated announces a balance change outside of session recording
// (e.g. a ledger reconciliation).
func BalanceUpdated(userID int64, balance string) Message {
	return Message{
		Type:   "balance_updated",
		UserID: userID,
		Extra:  map[string]any{"balance": balance},
	}
}

// Hub maintains the set of active WebSocket clients and broadcasts messages.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	logger  *slog.Logger
}

// NewHub creates a new Hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		logger:  logger,
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

// Unregister removes a client from the hub and closes its send channel.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// Broadcast sends a message to all connected clients. Clients whose send
// buffers are full miss the message rather than blocking the broadcaster.
func (h *Hub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("marshal broadcast", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		select {
		case c.send <- data:
		default:
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
