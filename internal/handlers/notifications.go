package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"notification-service/internal/database"
)

// NotificationPage is the paginated response for the notification list endpoint.
type NotificationPage struct {
	Content       []database.Notification `json:"content"`
	Page          int                     `json:"page"`
	Size          int                     `json:"size"`
	TotalElements int64                   `json:"totalElements"`
}

// ListNotifications handles GET /api/v1/notifications.
// Returns a page of notifications ordered by sent time descending.
func (h *Handlers) ListNotifications(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 0)
	size := queryInt(r, "size", 20)
	if size <= 0 || size > 100 {
		size = 20
	}

	result, err := h.store.ListNotifications(r.Context(), size, page*size)
	if err != nil {
		slog.Error("Failed to list notifications", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to list notifications")
		return
	}

	writeJSON(w, http.StatusOK, NotificationPage{
		Content:       result.Notifications,
		Page:          page,
		Size:          size,
		TotalElements: result.Total,
	})
}

// GetNotification handles GET /api/v1/notifications/{id}.
func (h *Handlers) GetNotification(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/v1/notifications/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "Notification not found")
		return
	}

	notification, err := h.store.GetNotification(r.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Notification not found")
		return
	}
	if err != nil {
		slog.Error("Failed to get notification", "notification_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to get notification")
		return
	}

	writeJSON(w, http.StatusOK, notification)
}

// GetStats handles GET /api/v1/notifications/stats.
func (h *Handlers) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.GetStats(r.Context())
	if err != nil {
		slog.Error("Failed to compute notification stats", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to compute notification stats")
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// TestNotificationRequest is the body for POST /api/v1/notifications/test.
type TestNotificationRequest struct {
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
	UserID  *int64 `json:"userId,omitempty"`
}

// TestNotification handles POST /api/v1/notifications/test.
// Dispatches a notification directly, bypassing the broker.
func (h *Handlers) TestNotification(w http.ResponseWriter, r *http.Request) {
	var req TestNotificationRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.Email == "" || !strings.Contains(req.Email, "@") {
		writeError(w, http.StatusBadRequest, "A valid email is required")
		return
	}
	if req.Subject == "" {
		writeError(w, http.StatusBadRequest, "subject is required")
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	slog.Info("Test notification requested", "email", req.Email, "subject", req.Subject)

	notification, err := h.dispatcher.Send(r.Context(), req.Email, req.Subject, req.Message, req.UserID)
	if err != nil {
		slog.Error("Error sending test notification", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to send test notification: "+err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, notification)
}
