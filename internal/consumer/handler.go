package consumer

import (
	"context"
	"encoding/json"
	"log/slog"

	"notification-service/internal/database"
	"notification-service/internal/events"
	"notification-service/internal/metrics"
	"notification-service/internal/payload"
)

// EventDispatcher sends one rendered notification and records its outcome.
type EventDispatcher interface {
	Send(ctx context.Context, recipient, subject, body string, userID *int64) (*database.Notification, error)
}

// EventTracker records consumed events in the in-memory history buffer.
type EventTracker interface {
	Track(kind events.Kind, payload, topic string, processed bool) events.TrackedEvent
}

// EventBroadcaster pushes tracked events to live subscribers.
type EventBroadcaster interface {
	Broadcast(event events.TrackedEvent)
}

// Handler processes one inbound broker message at a time.
//
// Every message ends tracked and broadcast, whether dispatch happened,
// was skipped, or failed: the tracking step runs in a finalizing block and
// no error escapes to the consume loop.
type Handler struct {
	dispatcher  EventDispatcher
	tracker     EventTracker
	broadcaster EventBroadcaster
	metrics     metrics.Recorder
}

// NewHandler creates a message handler. A nil metrics recorder falls back to
// the no-op implementation.
func NewHandler(d EventDispatcher, t EventTracker, b EventBroadcaster, m metrics.Recorder) *Handler {
	if m == nil {
		m = metrics.NewNoOp()
	}
	return &Handler{
		dispatcher:  d,
		tracker:     t,
		broadcaster: b,
		metrics:     m,
	}
}

// Handle processes one message of the given kind.
func (h *Handler) Handle(ctx context.Context, kind events.Kind, value []byte) {
	h.metrics.RecordReceived()

	switch kind {
	case events.KindTransaction:
		h.handleTransaction(ctx, value)
	case events.KindAccount:
		h.handleAccount(ctx, value)
	default:
		slog.Error("Message for unknown event kind", "kind", kind)
		h.metrics.RecordError()
	}
}

func (h *Handler) handleTransaction(ctx context.Context, value []byte) {
	processed := false
	eventData := string(value)

	defer h.finishTracking(events.KindTransaction, &eventData, &processed)

	var event events.TransactionEvent
	if err := json.Unmarshal(value, &event); err != nil {
		slog.Error("Failed to unmarshal transaction event", "error", err)
		h.metrics.RecordError()
		return
	}
	eventData = remarshal(&event, eventData)

	slog.Info("Received transaction event",
		"transaction_reference", event.TransactionReference,
		"type", event.Type,
		"status", event.Status,
	)

	if event.Email == "" {
		slog.Warn("No email address provided in transaction event",
			"transaction_reference", event.TransactionReference,
		)
		h.metrics.RecordSkipped()
		return
	}

	p := payload.BuildTransactionPayload(&event)
	n, err := h.dispatcher.Send(ctx, event.Email, p.Subject, p.Body, optionalUserID(event.UserID))
	if err != nil {
		slog.Error("Error processing transaction event",
			"transaction_reference", event.TransactionReference,
			"error", err,
		)
		h.metrics.RecordError()
		return
	}
	h.recordOutcome(n)

	processed = true
}

func (h *Handler) handleAccount(ctx context.Context, value []byte) {
	processed := false
	eventData := string(value)

	defer h.finishTracking(events.KindAccount, &eventData, &processed)

	var event events.AccountEvent
	if err := json.Unmarshal(value, &event); err != nil {
		slog.Error("Failed to unmarshal account event", "error", err)
		h.metrics.RecordError()
		return
	}
	eventData = remarshal(&event, eventData)

	slog.Info("Received account event",
		"event_type", event.EventType,
		"account_number", event.AccountNumber,
	)

	if event.Email == "" {
		slog.Warn("No email address provided in account event",
			"account_number", event.AccountNumber,
		)
		h.metrics.RecordSkipped()
		return
	}

	p := payload.BuildAccountPayload(&event)
	n, err := h.dispatcher.Send(ctx, event.Email, p.Subject, p.Body, optionalUserID(event.UserID))
	if err != nil {
		slog.Error("Error processing account event",
			"account_number", event.AccountNumber,
			"error", err,
		)
		h.metrics.RecordError()
		return
	}
	h.recordOutcome(n)

	processed = true
}

// recordOutcome records the delivery outcome captured on the persisted record.
func (h *Handler) recordOutcome(n *database.Notification) {
	if n == nil {
		return
	}
	if n.Status == database.StatusSent {
		h.metrics.RecordSent()
	} else {
		h.metrics.RecordFailed()
	}
}

// finishTracking is the finalizing step of message handling: it records the
// event in the tracker and broadcasts the snapshot to live subscribers.
// It also contains panics so one bad message never stops the consume loop.
func (h *Handler) finishTracking(kind events.Kind, eventData *string, processed *bool) {
	if r := recover(); r != nil {
		slog.Error("Panic while processing event", "kind", kind, "panic", r)
		h.metrics.RecordError()
	}

	tracked := h.tracker.Track(kind, *eventData, kind.Topic(), *processed)
	h.broadcaster.Broadcast(tracked)
}

// remarshal re-encodes the parsed event so the tracked payload reflects the
// typed fields. Serialization failure is logged and the raw payload kept.
func remarshal(event any, fallback string) string {
	data, err := json.Marshal(event)
	if err != nil {
		slog.Warn("Failed to serialize event for tracking", "error", err)
		return fallback
	}
	return string(data)
}

func optionalUserID(userID int64) *int64 {
	if userID == 0 {
		return nil
	}
	return &userID
}
