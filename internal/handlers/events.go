package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"notification-service/internal/events"
)

// streamBufferSize is the per-subscriber event buffer. A subscriber that
// falls this far behind is treated as dead and evicted.
const streamBufferSize = 16

// KafkaStatus is the response for the broker connectivity endpoint.
type KafkaStatus struct {
	Connected     bool       `json:"connected"`
	ConsumerGroup string     `json:"consumerGroup"`
	Topics        []string   `json:"topics"`
	LastEventTime *time.Time `json:"lastEventTime,omitempty"`
}

// GetKafkaStatus handles GET /api/v1/notifications/kafka/status.
// The service counts as connected once at least one event has been tracked.
func (h *Handlers) GetKafkaStatus(w http.ResponseWriter, r *http.Request) {
	status := KafkaStatus{
		ConsumerGroup: events.ConsumerGroupID,
		Topics:        []string{events.TransactionTopic, events.AccountTopic},
	}

	if last, ok := h.tracker.LastEventTime(); ok {
		status.LastEventTime = &last
		status.Connected = true
	}
	if h.tracker.Count() > 0 {
		status.Connected = true
	}

	writeJSON(w, http.StatusOK, status)
}

// GetKafkaEvents handles GET /api/v1/notifications/kafka/events.
// Returns the most recently tracked events, newest first.
func (h *Handlers) GetKafkaEvents(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	tracked := h.tracker.Recent(limit)
	writeJSON(w, http.StatusOK, tracked)
}

// StreamEvents handles GET /api/v1/notifications/events/stream.
//
// Opens a server-sent events stream that stays up until the client
// disconnects or a send fails. The first frame is a connection
// acknowledgement; each tracked event then arrives as a kafka-event frame.
func (h *Handlers) StreamEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	fmt.Fprintf(w, "event: connected\ndata: Connected to notification event stream\n\n")
	flusher.Flush()

	// The broadcaster delivers into a buffered channel; the handler goroutine
	// owns all writes to the connection. A full buffer fails the send, which
	// evicts this subscriber.
	ch := make(chan events.TrackedEvent, streamBufferSize)
	sub := h.broadcaster.Subscribe(func(event events.TrackedEvent) error {
		select {
		case ch <- event:
			return nil
		default:
			return fmt.Errorf("subscriber buffer full")
		}
	})
	defer h.broadcaster.Unsubscribe(sub)

	for {
		select {
		case <-r.Context().Done():
			slog.Debug("Event stream client disconnected", "subscription_id", sub.ID())
			return
		case <-sub.Done():
			// Evicted by the broadcaster (buffer overflow): close the
			// response so the client sees the stream end.
			slog.Debug("Event stream subscriber evicted", "subscription_id", sub.ID())
			return
		case event := <-ch:
			data, err := json.Marshal(event)
			if err != nil {
				slog.Warn("Failed to marshal tracked event for stream", "error", err)
				continue
			}
			if _, err := fmt.Fprintf(w, "event: kafka-event\ndata: %s\n\n", data); err != nil {
				slog.Debug("Event stream write failed, closing", "subscription_id", sub.ID(), "error", err)
				return
			}
			flusher.Flush()
		}
	}
}
