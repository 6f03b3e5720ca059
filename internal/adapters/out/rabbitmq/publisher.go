// Package rabbitmq publishes outbox messages to a topic exchange.
package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"waterline/internal/core/domain/model/outbox"
	"waterline/internal/core/ports"

	amqp "github.com/rabbitmq/amqp091-go"
)

const contentType = "application/json"

var ErrPublisherClosed = errors.New("rabbitmq publisher is closed")

// Channel is the slice of *amqp.Channel the publisher uses.
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type Publisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	ch       Channel
	exchange string
	closed   bool
}

// Dial connects to url and declares a durable topic exchange.
func Dial(url, exchange string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	p, err := NewPublisher(ch, exchange)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	p.conn = conn
	return p, nil
}

// NewPublisher declares the exchange on an already open channel.
func NewPublisher(ch Channel, exchange string) (*Publisher, error) {
	if ch == nil {
		return nil, errors.New("channel is required")
	}
	if exchange == "" {
		return nil, errors.New("exchange is required")
	}
	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	return &Publisher{ch: ch, exchange: exchange}, nil
}

// Publish sends the message payload with its routing key. The outbox id
// becomes the AMQP message id so consumers can deduplicate redeliveries.
func (p *Publisher) Publish(ctx context.Context, message outbox.Message) error {
	if err := message.Validate(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrPublisherClosed
	}

	err := p.ch.PublishWithContext(ctx, p.exchange, message.RoutingKey, false, false, amqp.Publishing{
		ContentType:  contentType,
		DeliveryMode: amqp.Persistent,
		MessageId:    message.ID.String(),
		Timestamp:    message.OccurredAt,
		Body:         message.Payload,
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", message.RoutingKey, err)
	}
	return nil
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true

	err := p.ch.Close()
	if p.conn != nil {
		err = errors.Join(err, p.conn.Close())
	}
	return err
}

var _ ports.EventPublisher = (*Publisher)(nil)
