// Package dispatcher renders, persists, and delivers email notifications.
// Every dispatch leaves a durable trace: a PENDING record is written before
// the transport is touched, and a terminal status is always persisted after.
package dispatcher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"notification-service/internal/database"
	"notification-service/internal/mailer"
)

// Repository defines the persistence operations the dispatcher needs.
// This interface allows handlers and tests to inject fakes.
type Repository interface {
	CreateNotification(ctx context.Context, n *database.Notification) error
	UpdateNotificationStatus(ctx context.Context, notificationID string, status database.NotificationStatus) error
}

// Dispatcher coordinates one notification dispatch: persist PENDING, attempt
// delivery, finalize the record to SENT or FAILED.
type Dispatcher struct {
	repo   Repository
	mailer mailer.Mailer
}

// New creates a dispatcher using the given repository and mail transport.
func New(repo Repository, m mailer.Mailer) *Dispatcher {
	return &Dispatcher{
		repo:   repo,
		mailer: m,
	}
}

// Send dispatches one notification to the recipient.
//
// The record is persisted in PENDING status before any delivery attempt; if
// that write fails the whole operation fails fast and no delivery happens.
// Transport failures are captured in the record as FAILED and not returned
// as errors. The terminal status write runs on every exit path; if it fails,
// the error is returned since the record would otherwise be stuck PENDING.
func (d *Dispatcher) Send(ctx context.Context, recipient, subject, body string, userID *int64) (n *database.Notification, err error) {
	n = &database.Notification{
		NotificationID: uuid.NewString(),
		UserID:         userID,
		Email:          recipient,
		Subject:        subject,
		Message:        body,
		Status:         database.StatusPending,
		SentAt:         time.Now(),
	}

	if createErr := d.repo.CreateNotification(ctx, n); createErr != nil {
		return nil, fmt.Errorf("failed to persist pending notification: %w", createErr)
	}

	defer func() {
		if finalErr := d.repo.UpdateNotificationStatus(ctx, n.NotificationID, n.Status); finalErr != nil {
			slog.Error("Failed to persist final notification status",
				"notification_id", n.NotificationID,
				"status", n.Status,
				"error", finalErr,
			)
			err = fmt.Errorf("failed to persist final notification status: %w", finalErr)
		}
	}()

	if sendErr := d.deliver(ctx, recipient, subject, body); sendErr != nil {
		n.Status = database.StatusFailed
		slog.Error("Failed to send email",
			"notification_id", n.NotificationID,
			"to", recipient,
			"error", sendErr,
		)
		return n, nil
	}

	n.Status = database.StatusSent
	slog.Info("Email sent",
		"notification_id", n.NotificationID,
		"to", recipient,
		"subject", subject,
	)
	return n, nil
}

// deliver invokes the mail transport, converting panics into errors so an
// unexpected failure inside the transport still finalizes the record.
func (d *Dispatcher) deliver(ctx context.Context, recipient, subject, body string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("unexpected delivery error: %v", r)
		}
	}()
	return d.mailer.Send(ctx, recipient, subject, body)
}
