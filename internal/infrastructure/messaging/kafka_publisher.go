package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"clinic-workflow/config"
	"clinic-workflow/internal/domain/entity"
	"clinic-workflow/internal/service"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

// messageWriter is the subset of *kafka.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type kafkaPublisher struct {
	writer messageWriter
	log    *logrus.Logger
}

// NewEventPublisher returns a Kafka-backed publisher, or a no-op one when no
// brokers are configured.
func NewEventPublisher(cfg config.KafkaConfig, log *logrus.Logger) service.EventPublisher {
	if len(cfg.Brokers) == 0 {
		log.Info("Kafka brokers not configured, status events disabled")
		return service.NewNoopEventPublisher()
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}

	log.Infof("Publishing status events to Kafka topic %s", cfg.Topic)
	return newKafkaPublisher(writer, log)
}

func newKafkaPublisher(writer messageWriter, log *logrus.Logger) *kafkaPublisher {
	return &kafkaPublisher{writer: writer, log: log}
}

// PublishStatusChanged keys messages by request id so every event of one
// request lands on the same partition in order.
func (p *kafkaPublisher) PublishStatusChanged(ctx context.Context, event entity.StatusChangedEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal status event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(event.RequestID, 10)),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "service_type", Value: []byte(event.ServiceType)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write status event for request %d: %w", event.RequestID, err)
	}
	return nil
}

func (p *kafkaPublisher) Close() error {
	return p.writer.Close()
}
