// Package ws pushes reservation changes to connected calendar views so
// every open browser sees the store converge without polling.
package ws

import (
	"context"
	"log/slog"
	"sync"
)

// Hub maintains the set of connected clients and fans broadcast messages
// out to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	logger     *slog.Logger

	mu sync.RWMutex
}

// NewHub creates an empty hub.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run drives the hub's event loop until the context is cancelled. Call it
// in its own goroutine.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.mu.Lock()
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mu.Unlock()
			h.logger.Info("ws client connected", "total", total)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			total := len(h.clients)
			h.mu.Unlock()
			h.logger.Info("ws client disconnected", "total", total)

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Slow consumer; drop it rather than block the hub.
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// add hands a client to the event loop. When the hub has already shut
// down, the client's send channel is closed so its pumps exit instead of
// blocking on the dead register channel.
func (h *Hub) add(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		close(client.send)
	}
}

// remove detaches a client, tolerating a hub that already shut down.
func (h *Hub) remove(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Broadcast queues a message for every connected client. Messages are
// dropped when the queue is full; clients resynchronize on reconnect.
func (h *Hub) Broadcast(message []byte) {
	select {
	case h.broadcast <- message:
	default:
		h.logger.Warn("ws broadcast queue full, dropping message")
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Client is one connected calendar view.
type Client struct {
	send chan []byte
}

func newClient() *Client {
	return &Client{send: make(chan []byte, 256)}
}
