// Package broadcaster manages the set of live event-stream subscribers and
// pushes tracked events to all of them.
package broadcaster

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"notification-service/internal/events"
)

// SendFunc delivers one event to a subscriber's transport.
// A non-nil error evicts the subscriber from the active set.
type SendFunc func(event events.TrackedEvent) error

// Subscription is the handle for one live subscriber stream.
type Subscription struct {
	id   string
	send SendFunc
	done chan struct{}
}

// ID returns the unique identifier of the subscription.
func (s *Subscription) ID() string {
	return s.id
}

// Done is closed when the subscription leaves the active set, whether by
// an explicit Unsubscribe or by eviction on a failed send. The transport
// handler selects on it to terminate the stream server-side.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Broadcaster maintains a mutation-safe set of active subscribers.
// All methods are safe for concurrent use.
type Broadcaster struct {
	mu   sync.RWMutex
	subs map[string]*Subscription
}

// New creates an empty broadcaster.
func New() *Broadcaster {
	return &Broadcaster{
		subs: make(map[string]*Subscription),
	}
}

// Subscribe registers a new subscriber and returns its handle.
// The caller is responsible for calling Unsubscribe when the stream ends
// (completion, timeout, or transport error on the remote side).
func (b *Broadcaster) Subscribe(send SendFunc) *Subscription {
	sub := &Subscription{
		id:   uuid.NewString(),
		send: send,
		done: make(chan struct{}),
	}

	b.mu.Lock()
	b.subs[sub.id] = sub
	active := len(b.subs)
	b.mu.Unlock()

	slog.Info("Subscriber connected", "subscription_id", sub.id, "active", active)
	return sub
}

// Unsubscribe removes a subscriber from the active set. Idempotent.
func (b *Broadcaster) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}

	b.mu.Lock()
	_, ok := b.subs[sub.id]
	delete(b.subs, sub.id)
	active := len(b.subs)
	b.mu.Unlock()

	if ok {
		close(sub.done)
		slog.Info("Subscriber removed", "subscription_id", sub.id, "active", active)
	}
}

// Broadcast sends the event to every currently active subscriber.
// A failed send evicts that subscriber immediately and is never retried;
// failures on one handle do not affect delivery to others.
func (b *Broadcaster) Broadcast(event events.TrackedEvent) {
	b.mu.RLock()
	snapshot := make([]*Subscription, 0, len(b.subs))
	for _, sub := range b.subs {
		snapshot = append(snapshot, sub)
	}
	b.mu.RUnlock()

	for _, sub := range snapshot {
		if err := sub.send(event); err != nil {
			slog.Debug("Subscriber send failed, removing", "subscription_id", sub.id, "error", err)
			b.Unsubscribe(sub)
		}
	}
}

// ActiveCount returns the number of currently connected subscribers.
func (b *Broadcaster) ActiveCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
