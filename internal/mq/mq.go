package mq

import "context"

// Message is a broker-agnostic payload delivered to subscribers.
type Message struct {
	ID   string
	Data []byte
}

// Handler processes a message. Return an error to signal a nack.
type Handler func(ctx context.Context, msg Message) error

// Backend defines the broker operations the event bridge needs. Publishing
// to a channel must reach every subscriber on every instance (fan-out
// semantics, not a work queue).
type Backend interface {
	Publish(ctx context.Context, channel string, data []byte) error
	Subscribe(ctx context.Context, channel string, handler Handler) error
	Close() error
}
