package feedclient

import (
	"context"
	"log"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

// State of the realtime subscription.
type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateSubscribed   State = "subscribed"
)

const (
	initialBackoff = 500 * time.Millisecond
	maxBackoff     = 10 * time.Second
)

type feedEvent struct {
	Channel string `json:"channel"`
	Action  string `json:"action"`
}

// State returns the current subscription state.
func (c *Client) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

func (c *Client) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// Connect starts the realtime subscription loop in the background. Transport
// loss triggers automatic reconnection with capped exponential backoff;
// Close or context cancellation stops all reconciliation.
func (c *Client) Connect(ctx context.Context) {
	go c.run(ctx)
}

// Close tears the subscription down permanently.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.closed)
	})
}

func (c *Client) run(ctx context.Context) {
	defer c.setState(StateDisconnected)

	backoff := initialBackoff
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.closed:
			return
		default:
		}

		c.setState(StateConnecting)
		err := c.subscribe(ctx)
		if err != nil && ctx.Err() == nil && !c.isClosed() {
			log.Printf("feedclient: subscription lost: %v", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-c.closed:
			return
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}

// subscribe holds one websocket session: dial, initial reconcile, then a
// full refetch for every feed event until the transport drops.
func (c *Client) subscribe(ctx context.Context) error {
	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	conn, _, err := websocket.Dial(dialCtx, c.baseURL+"/ws", nil)
	cancel()
	if err != nil {
		return err
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	c.setState(StateSubscribed)

	// Reconcile immediately: events missed while disconnected are not
	// replayed, the fresh fetch covers them.
	if err := c.Refresh(ctx); err != nil {
		log.Printf("feedclient: refresh: %v", err)
	}

	readCtx, cancelRead := context.WithCancel(ctx)
	defer cancelRead()
	go func() {
		select {
		case <-c.closed:
			conn.Close(websocket.StatusNormalClosure, "client closed")
		case <-readCtx.Done():
		}
	}()

	for {
		var event feedEvent
		if err := wsjson.Read(readCtx, conn, &event); err != nil {
			return err
		}
		if event.Channel != "posts" {
			continue
		}

		switch event.Action {
		case "create", "update", "delete":
			if err := c.Refresh(ctx); err != nil {
				log.Printf("feedclient: refresh after %s: %v", event.Action, err)
			}
		}
	}
}

func (c *Client) isClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}
