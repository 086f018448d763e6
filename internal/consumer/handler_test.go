package consumer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"notification-service/internal/database"
	"notification-service/internal/events"
)

type fakeDispatcher struct {
	err    error
	status database.NotificationStatus

	calls      int
	recipients []string
	subjects   []string
	userIDs    []*int64
}

func (f *fakeDispatcher) Send(_ context.Context, recipient, subject, _ string, userID *int64) (*database.Notification, error) {
	f.calls++
	f.recipients = append(f.recipients, recipient)
	f.subjects = append(f.subjects, subject)
	f.userIDs = append(f.userIDs, userID)
	if f.err != nil {
		return nil, f.err
	}
	status := f.status
	if status == "" {
		status = database.StatusSent
	}
	return &database.Notification{
		NotificationID: uuid.NewString(),
		Email:          recipient,
		Subject:        subject,
		Status:         status,
	}, nil
}

type trackedCall struct {
	kind      events.Kind
	payload   string
	topic     string
	processed bool
}

type fakeTracker struct {
	calls []trackedCall
}

func (f *fakeTracker) Track(kind events.Kind, payload, topic string, processed bool) events.TrackedEvent {
	f.calls = append(f.calls, trackedCall{kind: kind, payload: payload, topic: topic, processed: processed})
	return events.TrackedEvent{
		EventType: string(kind),
		EventData: payload,
		Topic:     topic,
		Processed: processed,
	}
}

type fakeBroadcaster struct {
	events []events.TrackedEvent
}

func (f *fakeBroadcaster) Broadcast(e events.TrackedEvent) {
	f.events = append(f.events, e)
}

func newTestHandler() (*Handler, *fakeDispatcher, *fakeTracker, *fakeBroadcaster) {
	d := &fakeDispatcher{}
	tr := &fakeTracker{}
	b := &fakeBroadcaster{}
	return NewHandler(d, tr, b, nil), d, tr, b
}

func TestHandler_Handle_TransactionDispatched(t *testing.T) {
	h, d, tr, b := newTestHandler()

	value := []byte(`{"transactionReference":"TXN-1","amount":100.5,"type":"TRANSFER","status":"COMPLETED","userId":42,"email":"user@example.com"}`)
	h.Handle(context.Background(), events.KindTransaction, value)

	if d.calls != 1 {
		t.Fatalf("dispatcher called %d times, want 1", d.calls)
	}
	if d.recipients[0] != "user@example.com" {
		t.Errorf("dispatched to %q, want user@example.com", d.recipients[0])
	}
	if d.subjects[0] != "Transaction Notification" {
		t.Errorf("dispatched subject %q, want Transaction Notification", d.subjects[0])
	}
	if d.userIDs[0] == nil || *d.userIDs[0] != 42 {
		t.Errorf("dispatched userID %v, want 42", d.userIDs[0])
	}

	if len(tr.calls) != 1 {
		t.Fatalf("tracker called %d times, want 1", len(tr.calls))
	}
	call := tr.calls[0]
	if call.kind != events.KindTransaction {
		t.Errorf("tracked kind %q, want %q", call.kind, events.KindTransaction)
	}
	if call.topic != events.TransactionTopic {
		t.Errorf("tracked topic %q, want %q", call.topic, events.TransactionTopic)
	}
	if !call.processed {
		t.Error("tracked processed = false, want true after successful dispatch")
	}
	if !strings.Contains(call.payload, `"transactionReference":"TXN-1"`) {
		t.Errorf("tracked payload missing typed fields: %s", call.payload)
	}

	if len(b.events) != 1 {
		t.Fatalf("broadcast %d events, want 1", len(b.events))
	}
	if !b.events[0].Processed {
		t.Error("broadcast event Processed = false, want true")
	}
}

func TestHandler_Handle_AccountDispatched(t *testing.T) {
	h, d, tr, _ := newTestHandler()

	value := []byte(`{"eventType":"ACCOUNT_CREATED","accountNumber":"ACC-9","balance":500,"currency":"USD","email":"user@example.com"}`)
	h.Handle(context.Background(), events.KindAccount, value)

	if d.calls != 1 {
		t.Fatalf("dispatcher called %d times, want 1", d.calls)
	}
	if d.subjects[0] != "Account Notification" {
		t.Errorf("dispatched subject %q, want Account Notification", d.subjects[0])
	}
	// userId absent in payload means no user association on the record.
	if d.userIDs[0] != nil {
		t.Errorf("dispatched userID %v, want nil", d.userIDs[0])
	}

	if len(tr.calls) != 1 || tr.calls[0].topic != events.AccountTopic {
		t.Errorf("tracked calls = %+v, want one on %q", tr.calls, events.AccountTopic)
	}
	if !tr.calls[0].processed {
		t.Error("tracked processed = false, want true")
	}
}

func TestHandler_Handle_MissingEmailSkipsDispatch(t *testing.T) {
	tests := []struct {
		name  string
		kind  events.Kind
		value string
	}{
		{
			name:  "transaction without email",
			kind:  events.KindTransaction,
			value: `{"transactionReference":"TXN-2","amount":10,"type":"DEPOSIT","status":"COMPLETED"}`,
		},
		{
			name:  "account without email",
			kind:  events.KindAccount,
			value: `{"eventType":"ACCOUNT_CREATED","accountNumber":"ACC-1","balance":0,"currency":"USD"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, d, tr, b := newTestHandler()

			h.Handle(context.Background(), tt.kind, []byte(tt.value))

			if d.calls != 0 {
				t.Errorf("dispatcher called %d times for event without email, want 0", d.calls)
			}
			// The event is still tracked and broadcast, but not processed.
			if len(tr.calls) != 1 {
				t.Fatalf("tracker called %d times, want 1", len(tr.calls))
			}
			if tr.calls[0].processed {
				t.Error("tracked processed = true for skipped event, want false")
			}
			if len(b.events) != 1 {
				t.Errorf("broadcast %d events, want 1", len(b.events))
			}
		})
	}
}

func TestHandler_Handle_MalformedJSONStillTracked(t *testing.T) {
	h, d, tr, b := newTestHandler()

	raw := `{not json`
	h.Handle(context.Background(), events.KindTransaction, []byte(raw))

	if d.calls != 0 {
		t.Errorf("dispatcher called %d times for malformed payload, want 0", d.calls)
	}
	if len(tr.calls) != 1 {
		t.Fatalf("tracker called %d times, want 1", len(tr.calls))
	}
	if tr.calls[0].processed {
		t.Error("tracked processed = true for malformed payload, want false")
	}
	// The raw payload is preserved when it cannot be parsed.
	if tr.calls[0].payload != raw {
		t.Errorf("tracked payload = %q, want raw %q", tr.calls[0].payload, raw)
	}
	if len(b.events) != 1 {
		t.Errorf("broadcast %d events, want 1", len(b.events))
	}
}

func TestHandler_Handle_DispatchErrorTrackedUnprocessed(t *testing.T) {
	h, d, tr, _ := newTestHandler()
	d.err = errors.New("db down")

	value := []byte(`{"transactionReference":"TXN-3","amount":5,"type":"TRANSFER","status":"COMPLETED","email":"user@example.com"}`)
	h.Handle(context.Background(), events.KindTransaction, value)

	if d.calls != 1 {
		t.Fatalf("dispatcher called %d times, want 1", d.calls)
	}
	if len(tr.calls) != 1 {
		t.Fatalf("tracker called %d times, want 1", len(tr.calls))
	}
	if tr.calls[0].processed {
		t.Error("tracked processed = true after dispatch error, want false")
	}
}

func TestHandler_Handle_FailedDeliveryStillProcessed(t *testing.T) {
	h, d, tr, _ := newTestHandler()
	d.status = database.StatusFailed

	value := []byte(`{"eventType":"ACCOUNT_CLOSED","accountNumber":"ACC-2","balance":0,"currency":"USD","email":"user@example.com"}`)
	h.Handle(context.Background(), events.KindAccount, value)

	// A FAILED record is a handled outcome: the message itself was processed.
	if len(tr.calls) != 1 {
		t.Fatalf("tracker called %d times, want 1", len(tr.calls))
	}
	if !tr.calls[0].processed {
		t.Error("tracked processed = false for failed delivery, want true")
	}
}

func TestHandler_Handle_UnknownKind(t *testing.T) {
	h, d, tr, _ := newTestHandler()

	h.Handle(context.Background(), events.Kind("Bogus"), []byte(`{}`))

	if d.calls != 0 {
		t.Errorf("dispatcher called %d times for unknown kind, want 0", d.calls)
	}
	if len(tr.calls) != 0 {
		t.Errorf("tracker called %d times for unknown kind, want 0", len(tr.calls))
	}
}

type panickyDispatcher struct{}

func (panickyDispatcher) Send(context.Context, string, string, string, *int64) (*database.Notification, error) {
	panic("dispatcher blew up")
}

func TestHandler_Handle_DispatchPanicContained(t *testing.T) {
	tr := &fakeTracker{}
	b := &fakeBroadcaster{}
	h := NewHandler(panickyDispatcher{}, tr, b, nil)

	defer func() {
		if r := recover(); r != nil {
			t.Errorf("Handle() let a panic escape: %v", r)
		}
	}()

	value := []byte(`{"transactionReference":"TXN-4","email":"user@example.com"}`)
	h.Handle(context.Background(), events.KindTransaction, value)

	// The event is still tracked and broadcast, marked unprocessed.
	if len(tr.calls) != 1 {
		t.Fatalf("tracker called %d times, want 1", len(tr.calls))
	}
	if tr.calls[0].processed {
		t.Error("tracked processed = true after dispatch panic, want false")
	}
	if len(b.events) != 1 {
		t.Errorf("broadcast %d events, want 1", len(b.events))
	}
}
