// Package database provides database operations for the notifications table.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ErrNotFound is returned when a notification does not exist.
var ErrNotFound = errors.New("notification not found")

// NotificationStatus represents the lifecycle status of a notification.
type NotificationStatus string

const (
	// StatusPending marks a notification persisted before any delivery attempt.
	StatusPending NotificationStatus = "PENDING"
	// StatusSent marks a notification whose delivery succeeded.
	StatusSent NotificationStatus = "SENT"
	// StatusFailed marks a notification whose delivery failed.
	StatusFailed NotificationStatus = "FAILED"
)

// String returns the status as a string.
func (s NotificationStatus) String() string {
	return string(s)
}

// IsTerminal returns true if the status is a terminal state (SENT or FAILED).
func (s NotificationStatus) IsTerminal() bool {
	return s == StatusSent || s == StatusFailed
}

// Notification represents a notification record in the database.
type Notification struct {
	NotificationID string             `json:"id"`
	UserID         *int64             `json:"userId,omitempty"`
	Email          string             `json:"email"`
	Subject        string             `json:"subject"`
	Message        string             `json:"message"`
	Status         NotificationStatus `json:"status"`
	SentAt         time.Time          `json:"sentAt"`
}

// NotificationListResult holds a page of notifications and the total row count.
type NotificationListResult struct {
	Notifications []Notification
	Total         int64
}

// Stats holds aggregate notification counts.
type Stats struct {
	TotalNotifications int64   `json:"totalNotifications"`
	SentCount          int64   `json:"sentCount"`
	FailedCount        int64   `json:"failedCount"`
	PendingCount       int64   `json:"pendingCount"`
	SuccessRate        float64 `json:"successRate"`
}

// CreateNotification inserts a new notification record.
func (db *DB) CreateNotification(ctx context.Context, n *Notification) error {
	query := `
		INSERT INTO notifications (notification_id, user_id, email, subject, message, status, sent_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	var userID sql.NullInt64
	if n.UserID != nil {
		userID = sql.NullInt64{Int64: *n.UserID, Valid: true}
	}

	_, err := db.conn.ExecContext(ctx, query,
		n.NotificationID, userID, n.Email, n.Subject, n.Message, n.Status.String(), n.SentAt)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	slog.Debug("Created notification record",
		"notification_id", n.NotificationID,
		"status", n.Status,
	)

	return nil
}

// UpdateNotificationStatus moves a PENDING notification to a terminal status.
// The PENDING predicate enforces one-directional transitions: a record never
// regresses from SENT or FAILED.
func (db *DB) UpdateNotificationStatus(ctx context.Context, notificationID string, status NotificationStatus) error {
	query := `
		UPDATE notifications
		SET status = $2
		WHERE notification_id = $1 AND status = 'PENDING'
	`
	result, err := db.conn.ExecContext(ctx, query, notificationID, status.String())
	if err != nil {
		return fmt.Errorf("failed to update notification status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("notification not found or already finalized: %s", notificationID)
	}

	slog.Debug("Updated notification status",
		"notification_id", notificationID,
		"status", status,
	)

	return nil
}

// GetNotification retrieves a notification by ID.
func (db *DB) GetNotification(ctx context.Context, notificationID string) (*Notification, error) {
	query := `
		SELECT notification_id, user_id, email, subject, message, status, sent_at
		FROM notifications
		WHERE notification_id = $1
	`
	var n Notification
	var userID sql.NullInt64
	var status string
	err := db.conn.QueryRowContext(ctx, query, notificationID).Scan(
		&n.NotificationID, &userID, &n.Email, &n.Subject, &n.Message, &status, &n.SentAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, notificationID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}

	if userID.Valid {
		n.UserID = &userID.Int64
	}
	n.Status = NotificationStatus(status)

	return &n, nil
}

// ListNotifications retrieves a page of notifications ordered by sent time descending.
func (db *DB) ListNotifications(ctx context.Context, limit, offset int) (*NotificationListResult, error) {
	var total int64
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM notifications`).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count notifications: %w", err)
	}

	query := `
		SELECT notification_id, user_id, email, subject, message, status, sent_at
		FROM notifications
		ORDER BY sent_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := db.conn.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	result := &NotificationListResult{
		Notifications: make([]Notification, 0, limit),
		Total:         total,
	}
	for rows.Next() {
		var n Notification
		var userID sql.NullInt64
		var status string
		if err := rows.Scan(&n.NotificationID, &userID, &n.Email, &n.Subject, &n.Message, &status, &n.SentAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		if userID.Valid {
			n.UserID = &userID.Int64
		}
		n.Status = NotificationStatus(status)
		result.Notifications = append(result.Notifications, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notifications: %w", err)
	}

	return result, nil
}

// GetStats computes aggregate notification counts and the success rate.
// The success rate is a percentage; it is 0 when no notifications exist.
func (db *DB) GetStats(ctx context.Context) (*Stats, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'SENT'),
			COUNT(*) FILTER (WHERE status = 'FAILED'),
			COUNT(*) FILTER (WHERE status = 'PENDING')
		FROM notifications
	`
	var stats Stats
	err := db.conn.QueryRowContext(ctx, query).Scan(
		&stats.TotalNotifications, &stats.SentCount, &stats.FailedCount, &stats.PendingCount)
	if err != nil {
		return nil, fmt.Errorf("failed to query notification stats: %w", err)
	}

	if stats.TotalNotifications > 0 {
		stats.SuccessRate = float64(stats.SentCount) / float64(stats.TotalNotifications) * 100
	}

	return &stats, nil
}
