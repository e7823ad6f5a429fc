// Package websocket pushes live console updates (scores, alerts, telemetry)
// to connected dashboard clients.
package websocket

import (
	"context"
	"sync"

	"LearnLoopAPI/internal/logger"
)

// Event kinds broadcast to the console.
const (
	EventScore     = "SCORE"
	EventAlert     = "ALERT"
	EventTelemetry = "TELEMETRY"
)

// Message is the envelope every console client receives.
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type Hub struct {
	clients    map[*Client]bool
	broadcast  chan Message
	register   chan *Client
	unregister chan *Client
	log        *logger.Logger
	mu         sync.RWMutex
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		broadcast:  make(chan Message, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		log:        log,
	}
}

// Run owns the client table. Returns when ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	h.log.Info("Console feed hub started")
	for {
		select {
		case <-ctx.Done():
			h.log.Info("Console feed hub shutting down...")
			return
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mu.Unlock()
			h.log.Info("Console client %s connected. Total: %d", client.id, total)
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Slow consumer; drop it rather than stall the feed.
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast fans an event out to every connected console client. Non-blocking
// for the caller when the hub is saturated.
func (h *Hub) Broadcast(eventType string, payload interface{}) {
	select {
	case h.broadcast <- Message{Type: eventType, Payload: payload}:
	default:
		h.log.Warn("Console feed saturated, dropping %s event", eventType)
	}
}
