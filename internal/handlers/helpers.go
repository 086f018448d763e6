package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

// SuccessResponse is the body returned by trigger endpoints on success.
type SuccessResponse struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// ErrorResponse is the body returned on handler failures.
type ErrorResponse struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// writeJSON serializes v and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// writeError writes an ErrorResponse with the given status code.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{
		Message:   message,
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

// writeSuccess writes a SuccessResponse with status 200.
func writeSuccess(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusOK, SuccessResponse{
		Message:   message,
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

// decodeJSON decodes the request body into v, rejecting unknown payloads.
// Writes a 400 response and returns false on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

// queryInt parses an integer query parameter with a default value.
func queryInt(r *http.Request, name string, defaultValue int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return defaultValue
	}
	return value
}
