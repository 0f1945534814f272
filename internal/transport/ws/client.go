package ws

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const (
	writeWait    = 10 * time.Second
	pingInterval = 30 * time.Second
	sendBufSize  = 256
)

// Client represents a single WebSocket connection.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	connID uuid.UUID

	send chan []byte
	done chan struct{}
}

func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		connID: uuid.New(),
		send:   make(chan []byte, sendBufSize),
		done:   make(chan struct{}),
	}
}

// ReadPump drains incoming frames. The feed channel carries no client
// publishes, so everything except ping is ignored.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		var frame inboundFrame
		err := wsjson.Read(context.Background(), c.conn, &frame)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				log.Printf("ws: connection %s disconnected", c.connID)
			} else {
				log.Printf("ws: read error from %s: %v", c.connID, err)
			}
			return
		}

		if frame.Type == "ping" {
			c.sendPong()
		}
	}
}

// WritePump writes messages from the send channel to the WebSocket.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				return
			}
			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			err := c.conn.Write(ctx, websocket.MessageText, message)
			cancel()
			if err != nil {
				log.Printf("ws: write error to %s: %v", c.connID, err)
				return
			}

		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			err := c.conn.Ping(ctx)
			cancel()
			if err != nil {
				log.Printf("ws: ping error to %s: %v", c.connID, err)
				return
			}

		case <-c.done:
			return
		}
	}
}

func (c *Client) sendPong() {
	data, _ := json.Marshal(pongFrame{Type: "pong"})
	select {
	case c.send <- data:
	default:
	}
}
