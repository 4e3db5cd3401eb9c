// Package notify picks the message broker that carries booking notifications.
package notify

import (
	"context"
	"fmt"

	"github.com/Domenick1991/flightbooking/config"
	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/kafka"
	"github.com/Domenick1991/flightbooking/internal/logger"
	"github.com/Domenick1991/flightbooking/internal/rabbitmq"
)

type Publisher interface {
	Publish(ctx context.Context, event domain.TicketBookedEvent) error
	Close() error
}

type Consumer interface {
	Consume(ctx context.Context, handler func(context.Context, []byte) error) error
	Close() error
}

func NewPublisher(cfg config.Config, log *logger.Logger) (Publisher, error) {
	switch cfg.Broker {
	case config.BrokerKafka:
		return kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TicketTopic, log), nil
	case config.BrokerRabbitMQ:
		p, err := rabbitmq.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Queue, log)
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown broker %q", cfg.Broker)
	}
}

func NewConsumer(cfg config.Config, log *logger.Logger) (Consumer, error) {
	switch cfg.Broker {
	case config.BrokerKafka:
		return kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.TicketTopic, log), nil
	case config.BrokerRabbitMQ:
		c, err := rabbitmq.NewConsumer(cfg.RabbitMQ.URL, cfg.RabbitMQ.Queue, log)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown broker %q", cfg.Broker)
	}
}
