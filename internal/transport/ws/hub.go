package ws

import (
	"encoding/json"
	"log"

	"github.com/google/uuid"
)

// Hub is the connection registry for the feed channel. Clients are keyed by
// connection ID, not user ID: viewers may be anonymous and one user can hold
// several connections.
type Hub struct {
	clients map[uuid.UUID]*Client

	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 256),
	}
}

// Run starts the Hub's main event loop. Call this in a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client.connID] = client
			log.Printf("ws hub: connection %s opened (%d total)", client.connID, len(h.clients))

		case client := <-h.unregister:
			if _, ok := h.clients[client.connID]; ok {
				delete(h.clients, client.connID)
				close(client.send)
				close(client.done)
				log.Printf("ws hub: connection %s closed (%d total)", client.connID, len(h.clients))
			}

		case data := <-h.broadcast:
			for _, client := range h.clients {
				select {
				case client.send <- data:
				default:
					// Client buffer full - disconnect
					delete(h.clients, client.connID)
					close(client.send)
					close(client.done)
				}
			}
		}
	}
}

// Broadcast sends an event to every connected client. Delivery is
// best-effort: there is no acknowledgment and no replay for clients that
// connect later or fall behind.
func (h *Hub) Broadcast(event *Event) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("ws hub: marshal error: %v", err)
		return
	}
	h.broadcast <- data
}
