// Package tracker provides a bounded in-memory history of consumed broker events.
// It is an operational-visibility cache, not an audit log: state lives for the
// process lifetime only and resets on restart.
package tracker

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"notification-service/internal/events"
)

// DefaultCapacity is the number of events retained when no capacity is given.
const DefaultCapacity = 100

// Tracker records the most recently consumed broker events.
// All methods are safe for concurrent use.
type Tracker struct {
	mu            sync.Mutex
	buf           []events.TrackedEvent
	capacity      int
	lastEventTime time.Time
}

// New creates a tracker retaining at most capacity events, oldest evicted first.
// A capacity <= 0 falls back to DefaultCapacity.
func New(capacity int) *Tracker {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Tracker{
		buf:      make([]events.TrackedEvent, 0, capacity),
		capacity: capacity,
	}
}

// Track records one consumed event and returns the immutable snapshot.
// The timestamp is assigned here, monotonic with arrival order.
func (t *Tracker) Track(kind events.Kind, payload, topic string, processed bool) events.TrackedEvent {
	event := events.TrackedEvent{
		EventType: string(kind),
		EventData: payload,
		Timestamp: time.Now(),
		Topic:     topic,
		Processed: processed,
	}

	t.mu.Lock()
	t.buf = append(t.buf, event)
	if len(t.buf) > t.capacity {
		// Evict oldest first so the buffer never exceeds capacity.
		t.buf = t.buf[len(t.buf)-t.capacity:]
	}
	t.lastEventTime = event.Timestamp
	t.mu.Unlock()

	slog.Debug("Tracked broker event", "event_type", kind, "topic", topic, "processed", processed)

	return event
}

// Recent returns up to limit events ordered by timestamp descending.
// Timestamp ties are broken by insertion order, later insertion first.
func (t *Tracker) Recent(limit int) []events.TrackedEvent {
	if limit <= 0 {
		return nil
	}

	t.mu.Lock()
	// Snapshot in reverse insertion order so the stable sort below breaks
	// timestamp ties in favor of the later insertion.
	snapshot := make([]events.TrackedEvent, len(t.buf))
	for i, e := range t.buf {
		snapshot[len(t.buf)-1-i] = e
	}
	t.mu.Unlock()

	sort.SliceStable(snapshot, func(i, j int) bool {
		return snapshot[i].Timestamp.After(snapshot[j].Timestamp)
	})

	if limit < len(snapshot) {
		snapshot = snapshot[:limit]
	}
	return snapshot
}

// Count returns the number of events currently retained.
func (t *Tracker) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.buf)
}

// LastEventTime returns the timestamp of the most recently tracked event.
// The second return value is false if no event was ever tracked.
func (t *Tracker) LastEventTime() (time.Time, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastEventTime, !t.lastEventTime.IsZero()
}

// Clear drops all retained events and resets the last-event timestamp.
func (t *Tracker) Clear() {
	t.mu.Lock()
	t.buf = t.buf[:0]
	t.lastEventTime = time.Time{}
	t.mu.Unlock()
	slog.Info("Cleared all tracked events")
}
