// Package producer provides Kafka producer functionality for injecting
// account and transaction events, used by the trigger endpoints.
package producer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"notification-service/internal/events"
	"notification-service/internal/kafkautil"
)

// Producer wraps Kafka writers for the transaction-events and account-events topics.
type Producer struct {
	transactionWriter *kafka.Writer
	accountWriter     *kafka.Writer
}

// NewProducer creates a new Kafka producer for both event topics.
// Writers are configured for at-least-once delivery with synchronous writes.
func NewProducer(brokers string) (*Producer, error) {
	if err := kafkautil.ValidateProducerParams(brokers, events.TransactionTopic); err != nil {
		return nil, err
	}

	brokerList := kafkautil.ParseBrokers(brokers)

	slog.Info("Initializing Kafka producer",
		"brokers", brokerList,
		"topics", []string{events.TransactionTopic, events.AccountTopic},
	)

	return &Producer{
		transactionWriter: kafkautil.NewWriter(brokerList, events.TransactionTopic),
		accountWriter:     kafkautil.NewWriter(brokerList, events.AccountTopic),
	}, nil
}

// PublishTransaction publishes a transaction event to the transaction-events topic.
// Creation and update timestamps are stamped if absent.
func (p *Producer) PublishTransaction(ctx context.Context, event *events.TransactionEvent) error {
	now := time.Now()
	if event.CreatedAt.IsZero() {
		event.CreatedAt = now
	}
	event.UpdatedAt = now

	if err := p.publish(ctx, p.transactionWriter, event.TransactionReference, event); err != nil {
		return fmt.Errorf("failed to publish transaction event: %w", err)
	}

	slog.Info("Published transaction event",
		"transaction_reference", event.TransactionReference,
		"topic", events.TransactionTopic,
	)
	return nil
}

// PublishAccount publishes an account event to the account-events topic.
// The creation timestamp is stamped if absent.
func (p *Producer) PublishAccount(ctx context.Context, event *events.AccountEvent) error {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	if err := p.publish(ctx, p.accountWriter, event.AccountNumber, event); err != nil {
		return fmt.Errorf("failed to publish account event: %w", err)
	}

	slog.Info("Published account event",
		"account_number", event.AccountNumber,
		"event_type", event.EventType,
		"topic", events.AccountTopic,
	)
	return nil
}

// publish serializes an event to JSON and writes it to Kafka.
// Events are published without an envelope type header; the topic carries the kind.
func (p *Producer) publish(ctx context.Context, writer *kafka.Writer, key string, event any) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: value,
		Time:  time.Now(),
	}

	if err := writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write message to Kafka: %w", err)
	}

	return nil
}

// Close gracefully closes the Kafka writers and releases resources.
func (p *Producer) Close() error {
	slog.Info("Closing Kafka producer")
	var firstErr error
	for _, w := range []*kafka.Writer{p.transactionWriter, p.accountWriter} {
		if err := w.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to close Kafka writer: %w", err)
		}
	}
	return firstErr
}
