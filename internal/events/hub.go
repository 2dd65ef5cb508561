package events

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/sirupsen/logrus"
)

// Hub keeps the set of connected websocket clients and broadcasts events to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex
	log        logrus.FieldLogger
}

// NewHub creates a Hub. Call Run to start it.
func NewHub(log logrus.FieldLogger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		log:        log.WithField("component", "ws"),
	}
}

// Run is the hub's event loop. It returns when ctx is done, after which
// Register and Unregister no longer block.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			n := len(h.clients)
			h.mu.Unlock()
			h.log.WithField("clients", n).Debug("websocket client connected")

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			n := len(h.clients)
			h.mu.Unlock()
			h.log.WithField("clients", n).Debug("websocket client disconnected")

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// slow client
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()

		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			return
		}
	}
}

// Publish implements Sink by broadcasting the event as JSON.
func (h *Hub) Publish(_ context.Context, ev Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	select {
	case h.broadcast <- body:
	default:
		h.log.Warn("broadcast channel full, dropping message")
	}
	return nil
}

// Register adds a client to the hub. It reports false if the hub has stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes a client from the hub.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Client is one websocket subscriber.
type Client struct {
	send chan []byte
}

// NewClient creates a client with a buffered send queue.
func NewClient() *Client {
	return &Client{send: make(chan []byte, 256)}
}

// Send returns the channel of outgoing messages. It is closed when the hub drops the client.
func (c *Client) Send() <-chan []byte {
	return c.send
}
