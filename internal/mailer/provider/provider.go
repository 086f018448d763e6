// Package provider defines the email provider interface and registry.
// Multiple backends (SES, Resend) are supported behind one interface.
package provider

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// EmailRequest represents an email to be sent.
type EmailRequest struct {
	From    string
	To      []string
	Subject string
	HTML    string
}

// Provider is the interface that all email providers must implement.
type Provider interface {
	// Name returns the provider name (e.g., "ses", "resend").
	Name() string

	// Send sends an email using this provider.
	Send(ctx context.Context, req *EmailRequest) error

	// IsConfigured returns true if the provider is properly configured.
	IsConfigured() bool
}

// Registry manages email providers with primary selection and fallback.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
	primary   string
}

// NewRegistry creates a new email provider registry.
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]Provider),
	}
}

// Register adds a provider to the registry.
func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[p.Name()] = p
	slog.Info("Registered email provider", "name", p.Name(), "configured", p.IsConfigured())
}

// SetPrimary sets the primary provider by name.
func (r *Registry) SetPrimary(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.providers[name]; !ok {
		return fmt.Errorf("provider %q not registered", name)
	}
	r.primary = name
	return nil
}

// Get returns a provider by name.
func (r *Registry) Get(name string) (Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[name]
	return p, ok
}

// GetConfigured returns the primary provider if configured, otherwise the
// first configured provider. Returns an error when none is configured.
func (r *Registry) GetConfigured() (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.primary != "" {
		if p, ok := r.providers[r.primary]; ok && p.IsConfigured() {
			return p, nil
		}
	}

	for name, p := range r.providers {
		if p.IsConfigured() {
			if r.primary != "" {
				slog.Warn("Primary email provider not configured, using fallback",
					"primary", r.primary,
					"fallback", name,
				)
			}
			return p, nil
		}
	}

	return nil, fmt.Errorf("no configured email provider available")
}
