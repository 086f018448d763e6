// Package events defines the event structures consumed from and published to
// the account-events and transaction-events topics.
package events

import (
	"fmt"
	"time"
)

const (
	// TransactionTopic is the Kafka topic carrying transaction events.
	TransactionTopic = "transaction-events"
	// AccountTopic is the Kafka topic carrying account events.
	AccountTopic = "account-events"
	// ConsumerGroupID is the consumer group shared by all instances of this service.
	ConsumerGroupID = "notification-group"
)

// Kind identifies the type of a domain event.
type Kind string

const (
	// KindTransaction marks events originating from the transaction-events topic.
	KindTransaction Kind = "TransactionEvent"
	// KindAccount marks events originating from the account-events topic.
	KindAccount Kind = "AccountEvent"
)

// Topic returns the Kafka topic associated with the event kind.
func (k Kind) Topic() string {
	if k == KindAccount {
		return AccountTopic
	}
	return TransactionTopic
}

// KindForTopic maps a Kafka topic name to its event kind.
// Returns an error for unknown topics.
func KindForTopic(topic string) (Kind, error) {
	switch topic {
	case TransactionTopic:
		return KindTransaction, nil
	case AccountTopic:
		return KindAccount, nil
	default:
		return "", fmt.Errorf("unknown topic: %s", topic)
	}
}

// TransactionEvent represents a transaction domain event.
// Field names follow the upstream producer's JSON encoding.
type TransactionEvent struct {
	TransactionReference string    `json:"transactionReference"`
	SourceAccountID      int64     `json:"sourceAccountId"`
	DestinationAccountID int64     `json:"destinationAccountId"`
	Amount               float64   `json:"amount"`
	Type                 string    `json:"type"`
	Status               string    `json:"status"`
	Description          string    `json:"description,omitempty"`
	UserID               int64     `json:"userId"`
	Email                string    `json:"email"`
	CreatedAt            time.Time `json:"createdAt"`
	UpdatedAt            time.Time `json:"updatedAt"`
}

// AccountEvent represents an account domain event.
type AccountEvent struct {
	EventType     string    `json:"eventType"`
	AccountNumber string    `json:"accountNumber"`
	UserID        int64     `json:"userId"`
	AccountType   string    `json:"accountType,omitempty"`
	Balance       float64   `json:"balance"`
	Currency      string    `json:"currency"`
	Email         string    `json:"email"`
	CreatedAt     time.Time `json:"createdAt"`
}

// TrackedEvent is an immutable snapshot of one consumed broker message.
// It is what the tracker stores and the broadcaster pushes to live subscribers.
type TrackedEvent struct {
	EventType string    `json:"eventType"`
	EventData string    `json:"eventData"`
	Timestamp time.Time `json:"timestamp"`
	Topic     string    `json:"topic"`
	Processed bool      `json:"processed"`
}
