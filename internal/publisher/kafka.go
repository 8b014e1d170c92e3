package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/XavierBriggs/fortuna/services/value-engine/pkg/models"
)

// KafkaPublisher publishes valuations to a Kafka topic keyed by fixture id
type KafkaPublisher struct {
	writer *kafka.Writer
	logger *zap.Logger
}

// NewKafkaPublisher creates a publisher for a Kafka topic
func NewKafkaPublisher(brokers []string, topic string, logger *zap.Logger) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{}, // Same fixture, same partition
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		BatchTimeout:           50 * time.Millisecond,
		WriteTimeout:           5 * time.Second,
	}

	logger.Info("kafka writer ready", zap.Strings("brokers", brokers), zap.String("topic", topic))

	return &KafkaPublisher{writer: writer, logger: logger}
}

// Publish implements ValuationPublisher
func (p *KafkaPublisher) Publish(ctx context.Context, valuation models.Valuation) error {
	payload, err := json.Marshal(valuation)
	if err != nil {
		return fmt.Errorf("failed to marshal valuation: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(valuation.FixtureID),
		Value: payload,
		Time:  valuation.ValuedAt,
		Headers: []kafka.Header{
			{Key: "sport_key", Value: []byte(valuation.SportKey)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write valuation to kafka: %w", err)
	}
	return nil
}

// Close flushes and closes the writer
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
