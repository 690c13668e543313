package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	ExchangeName = "blog.events"
	BindingKey   = "post.*"
	QueueName    = "blog.mirror"
)

var errPublisherClosed = errors.New("publisher closed")

// RabbitMQPublisher publishes events on ExchangeName. A dropped connection
// or channel is redialed on the next Publish.
type RabbitMQPublisher struct {
	url     string
	dial    func(url string) (*amqp.Connection, *amqp.Channel, error)
	conn    *amqp.Connection
	channel *amqp.Channel
	mu      sync.Mutex
	closed  bool
}

var _ Publisher = (*RabbitMQPublisher)(nil)

func NewRabbitMQPublisher(url string) (*RabbitMQPublisher, error) {
	p := &RabbitMQPublisher{url: url, dial: dialRabbitMQ}
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.connectLocked(); err != nil {
		return nil, err
	}
	return p, nil
}

func dialRabbitMQ(url string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("open channel: %w", err)
	}
	if err := DeclareExchange(ch); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, nil, err
	}
	return conn, ch, nil
}

// connectLocked reuses the current channel while it is open and redials
// otherwise. p.mu must be held.
func (p *RabbitMQPublisher) connectLocked() error {
	if p.closed {
		return errPublisherClosed
	}
	if p.channel != nil && !p.channel.IsClosed() {
		return nil
	}
	_ = p.releaseLocked()
	conn, ch, err := p.dial(p.url)
	if err != nil {
		return err
	}
	p.conn, p.channel = conn, ch
	return nil
}

func (p *RabbitMQPublisher) releaseLocked() error {
	var err error
	if p.channel != nil {
		if !p.channel.IsClosed() {
			err = p.channel.Close()
		}
		p.channel = nil
	}
	if p.conn != nil {
		if !p.conn.IsClosed() {
			if closeErr := p.conn.Close(); closeErr != nil && err == nil {
				err = closeErr
			}
		}
		p.conn = nil
	}
	return err
}

// DeclareExchange declares the durable topic exchange that carries post events.
func DeclareExchange(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(ExchangeName, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}
	return nil
}

// BindQueue declares the exchange and a durable queue receiving every post event.
func BindQueue(ch *amqp.Channel, queue string) (amqp.Queue, error) {
	if err := DeclareExchange(ch); err != nil {
		return amqp.Queue{}, err
	}
	q, err := ch.QueueDeclare(queue, true, false, false, false, nil)
	if err != nil {
		return amqp.Queue{}, fmt.Errorf("declare queue %s: %w", queue, err)
	}
	if err := ch.QueueBind(q.Name, BindingKey, ExchangeName, false, nil); err != nil {
		return amqp.Queue{}, fmt.Errorf("bind queue %s: %w", queue, err)
	}
	return q, nil
}

// Publish sends e to the exchange using its type as the routing key.
func (p *RabbitMQPublisher) Publish(ctx context.Context, e Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.connectLocked(); err != nil {
		return err
	}
	err = p.channel.PublishWithContext(ctx, ExchangeName, e.Type, false, false, amqp.Publishing{
		ContentType:  "application/json",
		Timestamp:    e.Timestamp,
		Type:         e.Type,
		Body:         body,
		DeliveryMode: amqp.Persistent,
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", e.Type, err)
	}
	return nil
}

func (p *RabbitMQPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	return p.releaseLocked()
}
