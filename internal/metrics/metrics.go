// Package metrics provides metrics recording for the notification service.
// It uses the null object pattern to avoid nil checks throughout the codebase.
package metrics

import "time"

// Recorder defines the interface for recording service metrics.
type Recorder interface {
	// RecordReceived increments the count of received broker messages.
	RecordReceived()

	// RecordProcessed records a successfully handled message with its latency.
	RecordProcessed(latency time.Duration)

	// RecordPublished increments the count of events published to the broker.
	RecordPublished()

	// RecordError increments the error counter.
	RecordError()

	// RecordSkipped increments the count of messages skipped (no recipient).
	RecordSkipped()

	// RecordFailed increments the count of failed notification deliveries.
	RecordFailed()

	// RecordSent increments the count of successfully sent notifications.
	RecordSent()
}

// NoOp is a no-op implementation of Recorder that discards all metrics.
// Use this when metrics collection is not configured.
type NoOp struct{}

// NewNoOp creates a new no-op metrics recorder.
func NewNoOp() *NoOp {
	return &NoOp{}
}

func (n *NoOp) RecordReceived()                 {}
func (n *NoOp) RecordProcessed(_ time.Duration) {}
func (n *NoOp) RecordPublished()                {}
func (n *NoOp) RecordError()                    {}
func (n *NoOp) RecordSkipped()                  {}
func (n *NoOp) RecordFailed()                   {}
func (n *NoOp) RecordSent()                     {}

// Ensure NoOp implements Recorder
var _ Recorder = (*NoOp)(nil)
