// Package ws implements the WebSocket notification layer: a connection
// registry scoped to the process lifetime plus the Notifier the matching
// service uses for fire-and-forget messages.
package ws

import (
	"encoding/json"
	"log/slog"
)

// Registry tracks active WebSocket clients and routes per-user messages.
// It replaces a global connection-manager singleton: construct one, run it,
// inject it where delivery is needed.
type Registry struct {
	// clients maps userID → client.
	clients map[uint64]*Client

	register   chan *Client
	unregister chan *Client
	direct     chan *directMsg

	logger *slog.Logger
}

type directMsg struct {
	userID uint64
	data   []byte
}

func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		clients:    make(map[uint64]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		direct:     make(chan *directMsg, 256),
		logger:     logger,
	}
}

// Run starts the registry's main event loop. Call this in a goroutine.
func (r *Registry) Run() {
	for {
		select {
		case client := <-r.register:
			// a reconnect replaces the previous connection
			if old, ok := r.clients[client.userID]; ok {
				close(old.send)
				close(old.done)
			}
			r.clients[client.userID] = client
			r.logger.Debug("ws client connected", "user", client.userID, "total", len(r.clients))

		case client := <-r.unregister:
			if current, ok := r.clients[client.userID]; ok && current == client {
				delete(r.clients, client.userID)
				close(client.send)
				close(client.done)
				r.logger.Debug("ws client disconnected", "user", client.userID, "total", len(r.clients))
			}

		case msg := <-r.direct:
			client, ok := r.clients[msg.userID]
			if !ok {
				// unreachable users are silently skipped
				continue
			}
			select {
			case client.send <- msg.data:
			default:
				// client buffer full - disconnect
				delete(r.clients, msg.userID)
				close(client.send)
				close(client.done)
			}
		}
	}
}

// Register adds a client to the registry.
func (r *Registry) Register(client *Client) {
	r.register <- client
}

// Unregister removes a client from the registry.
func (r *Registry) Unregister(client *Client) {
	r.unregister <- client
}

// Send queues an event for one user. No-op if the user has no connection.
func (r *Registry) Send(userID uint64, event *Event) {
	data, err := json.Marshal(event)
	if err != nil {
		r.logger.Error("ws marshal failed", "err", err)
		return
	}
	r.direct <- &directMsg{userID: userID, data: data}
}
