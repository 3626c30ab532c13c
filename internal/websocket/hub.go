package websocket

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
)

// Entities and actions carried by broadcast messages. The message type is
// "<entity>_<action>", e.g. "completion_created".
const (
	EntityChore      = "chore"
	EntityCompletion = "completion"
	EntityMember     = "member"
	EntityBadge      = "badge"
	EntityAssignment = "assignment"
	EntityInstance   = "instance"
	EntityCategory   = "category"

	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
	ActionEarned  = "earned"
	ActionApplied = "applied"
	ActionDue     = "due"
)

// Message represents a real-time sync notification broadcast to all clients.
type Message struct {
	Type   string         `json:"type"`
	Entity string         `json:"entity"`
	Action string         `json:"action"`
	ID     string         `json:"id,omitempty"`
	Extra  map[string]any `json:"extra,omitempty"`
}

// NewMessage creates a Message with the Type field derived from entity and action.
func NewMessage(entity, action, id string, extra map[string]any) Message {
	return Message{
		Type:   fmt.Sprintf("%s_%s", entity, action),
		Entity: entity,
		Action: action,
		ID:     id,
		Extra:  extra,
	}
}

// ConnObserver is told about clients joining and leaving.
type ConnObserver interface {
	ClientConnected()
	ClientDisconnected()
}

// Hub maintains the set of active WebSocket clients and broadcasts messages.
type Hub struct {
	mu       sync.RWMutex
	clients  map[*Client]struct{}
	logger   *slog.Logger
	observer ConnObserver
}

// NewHub creates a new Hub. observer may be nil.
func NewHub(logger *slog.Logger, observer ConnObserver) *Hub {
	return &Hub{
		clients:  make(map[*Client]struct{}),
		logger:   logger,
		observer: observer,
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	if h.observer != nil {
		h.observer.ClientConnected()
	}
	h.logger.Debug("client connected", "clients", h.ClientCount())
}

// Unregister removes a client from the hub and closes its send channel.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()

	if ok && h.observer != nil {
		h.observer.ClientDisconnected()
	}
}

// Broadcast sends a message to all connected clients.
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
			// Client buffer full — drop message to avoid blocking
			h.logger.Warn("dropped message for slow client", "type", msg.Type)
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
