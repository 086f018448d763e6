// Package handlers provides HTTP handlers for the notification service API.
package handlers

import (
	"context"
	"time"

	"notification-service/internal/broadcaster"
	"notification-service/internal/database"
	"notification-service/internal/events"
)

// NotificationStore defines the persistence queries the handlers need.
// This interface allows handlers to be tested without a real database.
type NotificationStore interface {
	ListNotifications(ctx context.Context, limit, offset int) (*database.NotificationListResult, error)
	GetNotification(ctx context.Context, notificationID string) (*database.Notification, error)
	GetStats(ctx context.Context) (*database.Stats, error)
}

// EventTracker defines the read surface of the in-memory event history.
type EventTracker interface {
	Recent(limit int) []events.TrackedEvent
	Count() int
	LastEventTime() (time.Time, bool)
}

// EventBroadcaster manages live event-stream subscriptions.
type EventBroadcaster interface {
	Subscribe(send broadcaster.SendFunc) *broadcaster.Subscription
	Unsubscribe(sub *broadcaster.Subscription)
	ActiveCount() int
}

// EventPublisher publishes synthetic events to the broker for end-to-end testing.
type EventPublisher interface {
	PublishTransaction(ctx context.Context, event *events.TransactionEvent) error
	PublishAccount(ctx context.Context, event *events.AccountEvent) error
}

// NotificationSender dispatches one notification directly (test endpoint).
type NotificationSender interface {
	Send(ctx context.Context, recipient, subject, body string, userID *int64) (*database.Notification, error)
}
