package mq

import (
	"context"
	"log"
)

// EventsChannel carries feed actions between server instances.
const EventsChannel = "feed.events"

// BridgeNotifier implements service.Notifier by publishing actions to the
// broker instead of the local hub. Each instance runs Forward to pull the
// actions back out and deliver them to its own connected clients, so every
// viewer on every instance sees every event.
type BridgeNotifier struct {
	backend Backend
}

func NewBridgeNotifier(backend Backend) *BridgeNotifier {
	return &BridgeNotifier{backend: backend}
}

func (n *BridgeNotifier) NotifyPostCreated() { n.publish("create") }
func (n *BridgeNotifier) NotifyPostUpdated() { n.publish("update") }
func (n *BridgeNotifier) NotifyPostDeleted() { n.publish("delete") }

func (n *BridgeNotifier) publish(action string) {
	if err := n.backend.Publish(context.Background(), EventsChannel, []byte(action)); err != nil {
		// Delivery is best-effort; a lost event is reconciled by the next
		// one or by manual paging.
		log.Printf("mq notifier: publish %s: %v", action, err)
	}
}

// Forward consumes bridged actions and hands them to deliver (the local
// hub) until the context is cancelled. Run it in a goroutine.
func Forward(ctx context.Context, backend Backend, deliver func(action string)) {
	err := backend.Subscribe(ctx, EventsChannel, func(ctx context.Context, msg Message) error {
		deliver(string(msg.Data))
		return nil
	})
	if err != nil && ctx.Err() == nil {
		log.Printf("mq forward: subscribe ended: %v", err)
	}
}
