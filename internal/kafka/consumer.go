package kafka

import (
	"context"
	"errors"
	"time"

	"github.com/Domenick1991/flightbooking/internal/logger"
	"github.com/segmentio/kafka-go"
)

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

type Consumer struct {
	reader messageReader
	log    *logger.Logger
}

func NewConsumer(brokers []string, groupID, topic string, log *logger.Logger) *Consumer {
	return &Consumer{
		log: log,
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:           brokers,
			GroupID:           groupID,
			Topic:             topic,
			HeartbeatInterval: 3 * time.Second,
			SessionTimeout:    30 * time.Second,
		}),
	}
}

func (c *Consumer) Close() error {
	if c == nil || c.reader == nil {
		return nil
	}
	return c.reader.Close()
}

// Consume hands every message body to handler until ctx is done. Offsets
// are committed on read, so handler errors do not redeliver the message.
func (c *Consumer) Consume(ctx context.Context, handler func(context.Context, []byte) error) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return nil
			}
			return err
		}

		if err := handler(ctx, msg.Value); err != nil {
			c.log.Errorf("kafka", "handle message at offset %d: %v", msg.Offset, err)
		}
	}
}
