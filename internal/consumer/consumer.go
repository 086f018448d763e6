// Package consumer provides Kafka consumer functionality for the
// transaction-events and account-events topics.
package consumer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"notification-service/internal/events"
	"notification-service/internal/kafkautil"
)

// Consumer wraps a Kafka reader for one topic.
type Consumer struct {
	reader *kafka.Reader
	topic  string
	kind   events.Kind
}

// NewConsumer creates a new Kafka consumer with the specified brokers, topic, and group ID.
// The consumer is configured for at-least-once delivery semantics.
func NewConsumer(brokers, topic, groupID string) (*Consumer, error) {
	if err := kafkautil.ValidateConsumerParams(brokers, topic, groupID); err != nil {
		return nil, err
	}

	kind, err := events.KindForTopic(topic)
	if err != nil {
		return nil, err
	}

	brokerList := kafkautil.ParseBrokers(brokers)

	slog.Info("Initializing Kafka consumer",
		"brokers", brokerList,
		"topic", topic,
		"group_id", groupID,
	)

	// StartOffset only applies when no committed offset exists for the group.
	reader := kafka.NewReader(kafkautil.NewReaderConfig(brokerList, topic, groupID))

	return &Consumer{
		reader: reader,
		topic:  topic,
		kind:   kind,
	}, nil
}

// Topic returns the topic this consumer reads from.
func (c *Consumer) Topic() string {
	return c.topic
}

// Run reads messages until the context is cancelled, handing each one to the
// handler. Per-message failures are contained inside the handler; this loop
// only stops on context cancellation.
func (c *Consumer) Run(ctx context.Context, h *Handler) error {
	slog.Info("Starting consume loop", "topic", c.topic)
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				slog.Info("Consume loop stopped", "topic", c.topic)
				return nil
			}
			slog.Error("Failed to fetch message", "topic", c.topic, "error", err)
			continue
		}

		start := time.Now()
		h.Handle(ctx, c.kind, msg.Value)
		h.metrics.RecordProcessed(time.Since(start))

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			slog.Error("Failed to commit offset", "topic", c.topic, "error", err)
		}
	}
}

// Close gracefully closes the Kafka reader and releases resources.
func (c *Consumer) Close() error {
	slog.Info("Closing Kafka consumer", "topic", c.topic)
	if err := c.reader.Close(); err != nil {
		slog.Error("Error closing Kafka consumer", "error", err)
		return fmt.Errorf("failed to close Kafka reader: %w", err)
	}
	return nil
}
