// Package handlers provides HTTP handlers for the notification service API.
package handlers

import (
	"notification-service/internal/metrics"
)

// Handlers wraps dependencies for HTTP handlers.
type Handlers struct {
	store       NotificationStore
	tracker     EventTracker
	broadcaster EventBroadcaster
	producer    EventPublisher
	dispatcher  NotificationSender
	metrics     metrics.Recorder
}

// NewHandlers creates a new handlers instance.
// If m is nil, a no-op metrics recorder is used.
func NewHandlers(store NotificationStore, tracker EventTracker, b EventBroadcaster, producer EventPublisher, dispatcher NotificationSender, m metrics.Recorder) *Handlers {
	if m == nil {
		m = metrics.NewNoOp()
	}
	return &Handlers{
		store:       store,
		tracker:     tracker,
		broadcaster: b,
		producer:    producer,
		dispatcher:  dispatcher,
		metrics:     m,
	}
}
