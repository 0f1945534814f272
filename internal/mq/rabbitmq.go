package mq

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	amqp "github.com/rabbitmq/amqp091-go"
)

// RabbitMQClient wraps a RabbitMQ connection/channel pair. Each channel name
// maps to a fanout exchange; every subscriber gets its own exclusive queue,
// so all instances see all events.
type RabbitMQClient struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

func NewRabbitMQClient(url string) (*RabbitMQClient, error) {
	if strings.TrimSpace(url) == "" {
		return nil, errors.New("rabbitmq url is required")
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	return &RabbitMQClient{conn: conn, channel: ch}, nil
}

func (r *RabbitMQClient) declareExchange(name string) error {
	return r.channel.ExchangeDeclare(name, "fanout", false, false, false, false, nil)
}

// Publish sends a message to the named fanout exchange.
func (r *RabbitMQClient) Publish(ctx context.Context, channel string, data []byte) error {
	if strings.TrimSpace(channel) == "" {
		return errors.New("rabbitmq channel is required")
	}

	if err := r.declareExchange(channel); err != nil {
		return err
	}

	return r.channel.PublishWithContext(ctx, channel, "", false, false, amqp.Publishing{
		ContentType: "application/octet-stream",
		MessageId:   newMessageID(),
		Body:        data,
	})
}

// Subscribe consumes messages from an exclusive queue bound to the named
// exchange until the context is cancelled.
func (r *RabbitMQClient) Subscribe(ctx context.Context, channel string, handler Handler) error {
	if strings.TrimSpace(channel) == "" {
		return errors.New("rabbitmq channel is required")
	}

	if err := r.declareExchange(channel); err != nil {
		return err
	}

	queue, err := r.channel.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		return err
	}
	if err := r.channel.QueueBind(queue.Name, "", channel, false, nil); err != nil {
		return err
	}

	consumerTag := fmt.Sprintf("consumer-%s", newMessageID())
	deliveries, err := r.channel.Consume(queue.Name, consumerTag, false, true, false, false, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = r.channel.Cancel(consumerTag, false)
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case delivery, ok := <-deliveries:
			if !ok {
				return errors.New("rabbitmq delivery channel closed")
			}
			msg := Message{ID: delivery.MessageId, Data: delivery.Body}
			if err := handler(ctx, msg); err != nil {
				_ = delivery.Nack(false, false)
				continue
			}
			_ = delivery.Ack(false)
		}
	}
}

func (r *RabbitMQClient) Close() error {
	_ = r.channel.Close()
	return r.conn.Close()
}

func newMessageID() string {
	buf := make([]byte, 8)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}
