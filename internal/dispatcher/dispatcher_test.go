package dispatcher

import (
	"context"
	"errors"
	"testing"

	"notification-service/internal/database"
)

type fakeRepo struct {
	createErr error
	updateErr error

	created       []*database.Notification
	updates       []database.NotificationStatus
	updateIDs     []string
	createdStatus []database.NotificationStatus
}

func (f *fakeRepo) CreateNotification(_ context.Context, n *database.Notification) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, n)
	f.createdStatus = append(f.createdStatus, n.Status)
	return nil
}

func (f *fakeRepo) UpdateNotificationStatus(_ context.Context, id string, status database.NotificationStatus) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updates = append(f.updates, status)
	f.updateIDs = append(f.updateIDs, id)
	return nil
}

type fakeMailer struct {
	err      error
	panicMsg string
	sent     int
}

func (f *fakeMailer) Send(_ context.Context, _, _, _ string) error {
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	f.sent++
	return f.err
}

func TestDispatcher_Send_Success(t *testing.T) {
	repo := &fakeRepo{}
	m := &fakeMailer{}
	d := New(repo, m)

	userID := int64(7)
	n, err := d.Send(context.Background(), "user@example.com", "Subject", "<html></html>", &userID)
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	if n.Status != database.StatusSent {
		t.Errorf("Send() status = %v, want %v", n.Status, database.StatusSent)
	}
	if n.NotificationID == "" {
		t.Error("Send() did not assign a notification ID")
	}
	if n.UserID == nil || *n.UserID != 7 {
		t.Errorf("Send() UserID = %v, want 7", n.UserID)
	}

	// The record is persisted PENDING before delivery, then finalized SENT.
	if len(repo.createdStatus) != 1 || repo.createdStatus[0] != database.StatusPending {
		t.Errorf("created with status %v, want PENDING before delivery", repo.createdStatus)
	}
	if len(repo.updates) != 1 || repo.updates[0] != database.StatusSent {
		t.Errorf("finalized with %v, want one SENT update", repo.updates)
	}
	if repo.updateIDs[0] != n.NotificationID {
		t.Errorf("finalized notification %q, want %q", repo.updateIDs[0], n.NotificationID)
	}
	if m.sent != 1 {
		t.Errorf("mailer invoked %d times, want 1", m.sent)
	}
}

func TestDispatcher_Send_PendingPersistFailureSkipsDelivery(t *testing.T) {
	repo := &fakeRepo{createErr: errors.New("db down")}
	m := &fakeMailer{}
	d := New(repo, m)

	n, err := d.Send(context.Background(), "user@example.com", "Subject", "Body", nil)
	if err == nil {
		t.Fatal("Send() error = nil, want persist error")
	}
	if n != nil {
		t.Errorf("Send() notification = %v, want nil", n)
	}
	if m.sent != 0 {
		t.Errorf("mailer invoked %d times after persist failure, want 0", m.sent)
	}
	if len(repo.updates) != 0 {
		t.Errorf("status updated %d times after persist failure, want 0", len(repo.updates))
	}
}

func TestDispatcher_Send_TransportFailureRecordedNotReturned(t *testing.T) {
	repo := &fakeRepo{}
	m := &fakeMailer{err: errors.New("smtp timeout")}
	d := New(repo, m)

	n, err := d.Send(context.Background(), "user@example.com", "Subject", "Body", nil)
	if err != nil {
		t.Fatalf("Send() error = %v, transport failure must not propagate", err)
	}
	if n.Status != database.StatusFailed {
		t.Errorf("Send() status = %v, want %v", n.Status, database.StatusFailed)
	}
	if len(repo.updates) != 1 || repo.updates[0] != database.StatusFailed {
		t.Errorf("finalized with %v, want one FAILED update", repo.updates)
	}
}

func TestDispatcher_Send_FinalPersistFailureEscalates(t *testing.T) {
	repo := &fakeRepo{updateErr: errors.New("db down")}
	m := &fakeMailer{}
	d := New(repo, m)

	n, err := d.Send(context.Background(), "user@example.com", "Subject", "Body", nil)
	if err == nil {
		t.Fatal("Send() error = nil, want final persist error")
	}
	// The in-memory record still reflects the delivery outcome.
	if n == nil || n.Status != database.StatusSent {
		t.Errorf("Send() notification = %v, want SENT record alongside error", n)
	}
}

func TestDispatcher_Send_TransportPanicFinalizesFailed(t *testing.T) {
	repo := &fakeRepo{}
	m := &fakeMailer{panicMsg: "provider blew up"}
	d := New(repo, m)

	n, err := d.Send(context.Background(), "user@example.com", "Subject", "Body", nil)
	if err != nil {
		t.Fatalf("Send() error = %v, want panic converted to FAILED record", err)
	}
	if n.Status != database.StatusFailed {
		t.Errorf("Send() status = %v, want %v", n.Status, database.StatusFailed)
	}
	if len(repo.updates) != 1 || repo.updates[0] != database.StatusFailed {
		t.Errorf("finalized with %v, want one FAILED update", repo.updates)
	}
}
