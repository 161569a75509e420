// Package events publishes domain events to Kafka. When no brokers are
// configured events are logged and dropped, keeping development setups free
// of a Kafka dependency.
package events

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"github.com/elevate-edu/elevate/internal/config"
	"github.com/elevate-edu/elevate/internal/domain/models"
	"github.com/elevate-edu/elevate/pkg/logger"
)

// Publisher delivers domain events to the event bus.
type Publisher interface {
	Publish(ctx context.Context, event *models.DomainEvent) error
	Close() error
}

// NewPublisher returns a Kafka publisher, or the logging fallback when no
// brokers are configured.
func NewPublisher(cfg config.KafkaConfig, log logger.Logger) Publisher {
	if len(cfg.Brokers) == 0 {
		return &logPublisher{log: log.WithComponent("events")}
	}
	return &kafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        cfg.Topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
		},
		log: log.WithComponent("events"),
	}
}

type kafkaPublisher struct {
	writer *kafka.Writer
	log    logger.Logger
}

// Publish writes the event keyed by organization id so each tenant's events
// stay ordered within a partition.
func (p *kafkaPublisher) Publish(ctx context.Context, event *models.DomainEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.OrganizationID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
		},
	})
	if err != nil {
		p.log.Error(ctx, "event publish failed", err,
			logger.String("event_type", string(event.Type)),
			logger.String("event_id", event.ID),
		)
		return err
	}
	p.log.Debug(ctx, "event published",
		logger.String("event_type", string(event.Type)),
		logger.String("event_id", event.ID),
	)
	return nil
}

func (p *kafkaPublisher) Close() error {
	return p.writer.Close()
}

type logPublisher struct {
	log logger.Logger
}

func (p *logPublisher) Publish(ctx context.Context, event *models.DomainEvent) error {
	p.log.Info(ctx, "domain event (no brokers configured)",
		logger.String("event_type", string(event.Type)),
		logger.String("event_id", event.ID),
		logger.Any("payload", event.Payload),
	)
	return nil
}

func (p *logPublisher) Close() error { return nil }
