// Package rabbitmq carries booking notifications over a durable RabbitMQ queue.
package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/logger"
	amqp "github.com/rabbitmq/amqp091-go"
)

type publishChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type consumeChannel interface {
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
	Close() error
}

// open dials the broker and declares the queue on a fresh channel.
func open(url, queue string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("rabbitmq: dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("rabbitmq: channel open: %w", err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, nil, fmt.Errorf("rabbitmq: queue declare: %w", err)
	}
	return conn, ch, nil
}

type Publisher struct {
	conn  *amqp.Connection
	ch    publishChannel
	queue string
	log   *logger.Logger
}

func NewPublisher(url, queue string, log *logger.Logger) (*Publisher, error) {
	conn, ch, err := open(url, queue)
	if err != nil {
		return nil, err
	}
	p := newPublisher(ch, queue, log)
	p.conn = conn
	return p, nil
}

func newPublisher(ch publishChannel, queue string, log *logger.Logger) *Publisher {
	if log == nil {
		log = logger.Nop()
	}
	return &Publisher{ch: ch, queue: queue, log: log}
}

func (p *Publisher) Publish(ctx context.Context, event domain.TicketBookedEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("rabbitmq: marshal event: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.PNR,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := p.ch.PublishWithContext(ctx, "", p.queue, false, false, pub); err != nil {
		return fmt.Errorf("rabbitmq: publish: %w", err)
	}
	p.log.Debugf("rabbitmq", "published %s to %s", event.PNR, p.queue)
	return nil
}

func (p *Publisher) Close() error {
	err := p.ch.Close()
	if p.conn != nil {
		err = errors.Join(err, p.conn.Close())
	}
	return err
}

type Consumer struct {
	conn  *amqp.Connection
	ch    consumeChannel
	queue string
	log   *logger.Logger
}

func NewConsumer(url, queue string, log *logger.Logger) (*Consumer, error) {
	conn, ch, err := open(url, queue)
	if err != nil {
		return nil, err
	}
	if err := ch.Qos(50, 0, false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq: set qos: %w", err)
	}
	return &Consumer{conn: conn, ch: ch, queue: queue, log: log}, nil
}

// Consume acknowledges every delivery after handler returns, whatever the
// outcome. It returns nil when ctx is done.
func (c *Consumer) Consume(ctx context.Context, handler func(context.Context, []byte) error) error {
	msgs, err := c.ch.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("rabbitmq: consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return errors.New("rabbitmq: deliveries channel closed")
			}
			if err := handler(ctx, d.Body); err != nil {
				c.log.Errorf("rabbitmq", "handle delivery %d: %v", d.DeliveryTag, err)
			}
			if err := d.Ack(false); err != nil {
				c.log.Warnf("rabbitmq", "ack delivery %d: %v", d.DeliveryTag, err)
			}
		}
	}
}

func (c *Consumer) Close() error {
	err := c.ch.Close()
	if c.conn != nil {
		err = errors.Join(err, c.conn.Close())
	}
	return err
}
