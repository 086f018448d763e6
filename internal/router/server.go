// Package router provides HTTP routing configuration for the notification service API.
package router

import (
	"net/http"
	"time"

	"notification-service/internal/handlers"
	"notification-service/internal/metrics"
)

// NewServer creates a new HTTP server with the router configured.
// WriteTimeout is intentionally zero: the event stream endpoint holds
// connections open indefinitely.
func NewServer(port string, h *handlers.Handlers, m metrics.Recorder) *http.Server {
	router := NewRouter(h, m)
	return &http.Server{
		Addr:        ":" + port,
		Handler:     router.Handler(),
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}
}
