// Package mailer provides the mail transport used by the notification dispatcher.
// It supports API providers (Resend, SES) with an SMTP fallback for local
// development servers.
package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"notification-service/internal/mailer/provider"
	"notification-service/internal/shared"
)

// Mailer is the delivery transport for rendered notifications.
type Mailer interface {
	// Send delivers an HTML email to the recipient.
	// Returns an error on any transport failure.
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// New builds the mail transport. API providers are opt-in: EMAIL_PROVIDER
// names the primary (resend or ses) and another configured provider serves as
// fallback. Without EMAIL_PROVIDER, plain SMTP is used so local development
// servers keep working.
func New() Mailer {
	name := shared.GetEnvOrDefault("EMAIL_PROVIDER", "")
	if name == "" {
		slog.Info("EMAIL_PROVIDER not set, using SMTP")
		return NewSMTPMailer()
	}

	registry := provider.NewRegistry()
	registry.Register(provider.NewResendProvider())
	registry.Register(provider.NewSESProvider())

	if err := registry.SetPrimary(name); err != nil {
		slog.Warn("Unknown EMAIL_PROVIDER, using SMTP", "name", name)
		return NewSMTPMailer()
	}

	p, err := registry.GetConfigured()
	if err != nil {
		slog.Warn("No configured API email provider, using SMTP", "error", err)
		return NewSMTPMailer()
	}

	slog.Info("Using API email provider", "name", p.Name())
	return &providerMailer{
		provider: p,
		from:     shared.GetEnvOrDefault("MAIL_FROM", defaultFrom),
	}
}

// providerMailer adapts a provider.Provider to the Mailer interface.
type providerMailer struct {
	provider provider.Provider
	from     string
}

func (m *providerMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	recipients := parseRecipients(to)
	if len(recipients) == 0 {
		return fmt.Errorf("email recipient is required")
	}

	req := &provider.EmailRequest{
		From:    m.from,
		To:      recipients,
		Subject: subject,
		HTML:    htmlBody,
	}
	return m.provider.Send(ctx, req)
}

// parseRecipients parses a comma-separated list of email addresses.
func parseRecipients(value string) []string {
	parts := strings.Split(value, ",")
	recipients := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			recipients = append(recipients, trimmed)
		}
	}
	return recipients
}
