package handlers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"notification-service/internal/events"
)

// TriggerTransactionRequest is the body for POST /api/v1/notifications/trigger/transaction.
type TriggerTransactionRequest struct {
	TransactionReference string  `json:"transactionReference"`
	SourceAccountID      int64   `json:"sourceAccountId"`
	DestinationAccountID int64   `json:"destinationAccountId"`
	Amount               float64 `json:"amount"`
	Type                 string  `json:"type"`
	Status               string  `json:"status"`
	Description          string  `json:"description"`
	UserID               int64   `json:"userId"`
	Email                string  `json:"email"`
}

// TriggerTransaction handles POST /api/v1/notifications/trigger/transaction.
// Publishes a synthetic transaction event so the full pipeline can be exercised.
func (h *Handlers) TriggerTransaction(w http.ResponseWriter, r *http.Request) {
	var req TriggerTransactionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.TransactionReference == "" {
		writeError(w, http.StatusBadRequest, "transactionReference is required")
		return
	}
	if req.Amount <= 0 {
		writeError(w, http.StatusBadRequest, "amount must be positive")
		return
	}
	if req.Type == "" {
		writeError(w, http.StatusBadRequest, "type is required")
		return
	}
	if req.Status == "" {
		writeError(w, http.StatusBadRequest, "status is required")
		return
	}
	if !validEmail(req.Email) {
		writeError(w, http.StatusBadRequest, "a valid email is required")
		return
	}

	event := &events.TransactionEvent{
		TransactionReference: req.TransactionReference,
		SourceAccountID:      req.SourceAccountID,
		DestinationAccountID: req.DestinationAccountID,
		Amount:               req.Amount,
		Type:                 req.Type,
		Status:               req.Status,
		Description:          req.Description,
		UserID:               req.UserID,
		Email:                req.Email,
	}

	if err := h.producer.PublishTransaction(r.Context(), event); err != nil {
		slog.Error("Error triggering transaction event", "error", err)
		h.metrics.RecordError()
		writeError(w, http.StatusInternalServerError, "Failed to trigger transaction event: "+err.Error())
		return
	}

	h.metrics.RecordPublished()
	writeSuccess(w, "Transaction event sent to Kafka successfully")
}

// TriggerAccountRequest is the body for POST /api/v1/notifications/trigger/account.
type TriggerAccountRequest struct {
	EventType     string  `json:"eventType"`
	AccountNumber string  `json:"accountNumber"`
	UserID        int64   `json:"userId"`
	AccountType   string  `json:"accountType"`
	Balance       float64 `json:"balance"`
	Currency      string  `json:"currency"`
	Email         string  `json:"email"`
}

// TriggerAccount handles POST /api/v1/notifications/trigger/account.
func (h *Handlers) TriggerAccount(w http.ResponseWriter, r *http.Request) {
	var req TriggerAccountRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.EventType == "" {
		writeError(w, http.StatusBadRequest, "eventType is required")
		return
	}
	if req.AccountNumber == "" {
		writeError(w, http.StatusBadRequest, "accountNumber is required")
		return
	}
	if !validEmail(req.Email) {
		writeError(w, http.StatusBadRequest, "a valid email is required")
		return
	}

	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}

	event := &events.AccountEvent{
		EventType:     req.EventType,
		AccountNumber: req.AccountNumber,
		UserID:        req.UserID,
		AccountType:   req.AccountType,
		Balance:       req.Balance,
		Currency:      currency,
		Email:         req.Email,
		CreatedAt:     time.Now(),
	}

	if err := h.producer.PublishAccount(r.Context(), event); err != nil {
		slog.Error("Error triggering account event", "error", err)
		h.metrics.RecordError()
		writeError(w, http.StatusInternalServerError, "Failed to trigger account event: "+err.Error())
		return
	}

	h.metrics.RecordPublished()
	writeSuccess(w, "Account event sent to Kafka successfully")
}

// validEmail is a minimal sanity check; real validation happens downstream.
func validEmail(email string) bool {
	return email != "" && strings.Contains(email, "@")
}
