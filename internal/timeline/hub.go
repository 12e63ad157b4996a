package timeline

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/voyago/backend/internal/models"
)

// Message types for timeline subscribers
const (
	MessageTypeTimeline = "timeline"
	MessageTypePing     = "ping"
	MessageTypePong     = "pong"
)

// Message is one frame pushed to a subscriber
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Hub maintains the set of live timeline subscribers and pushes each of
// them the full ordered snapshot whenever the record set changes.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan Message
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
	logger     *zap.Logger
}

// NewHub creates a new Hub
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan Message, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger,
	}
}

// Run services subscriber lifecycle and broadcast events until the context
// is canceled, then closes every remaining subscriber.
func (h *Hub) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.closeAllClients()
			return ctx.Err()

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mu.Unlock()
			h.logger.Info("timeline subscriber connected", zap.Int("total_clients", total))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.closeSend()
			}
			total := len(h.clients)
			h.mu.Unlock()
			h.logger.Info("timeline subscriber disconnected", zap.Int("total_clients", total))

		case message := <-h.broadcast:
			h.broadcastToClients(message)
		}
	}
}

// BroadcastTimeline pushes the full ordered record list, replacing whatever
// snapshot subscribers rendered previously.
func (h *Hub) BroadcastTimeline(records []models.Recommendation) {
	message := Message{
		Type: MessageTypeTimeline,
		Data: NewSnapshot(records),
	}

	select {
	case h.broadcast <- message:
	default:
		// Each message carries the full snapshot, so a newer one supersedes
		// anything still pending. Discard the oldest queued snapshot to make
		// room rather than dropping the newest state.
		select {
		case <-h.broadcast:
		default:
		}
		select {
		case h.broadcast <- message:
		default:
			h.logger.Warn("broadcast channel full, dropping timeline snapshot")
		}
	}
}

// ClientCount returns the number of connected subscribers
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// broadcastToClients fans a message out to every subscriber. A subscriber
// whose send buffer is full is dropped rather than blocking the hub.
func (h *Hub) broadcastToClients(message Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		select {
		case client.send <- message:
		default:
			client.closeSend()
			delete(h.clients, client)
			h.logger.Warn("dropped slow timeline subscriber")
		}
	}
}

func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		client.closeSend()
		delete(h.clients, client)
	}
	h.logger.Info("closed all timeline subscribers during shutdown")
}
