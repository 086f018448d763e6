package mailer

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"notification-service/internal/shared"
)

const defaultFrom = "noreply@bankapp.com"

// SMTPMailer implements email delivery via SMTP.
type SMTPMailer struct {
	host     string
	port     string
	user     string
	password string
	from     string
}

// SMTPConfig holds SMTP configuration.
type SMTPConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	From     string
}

// NewSMTPMailer creates an SMTP mailer configured from the environment.
func NewSMTPMailer() *SMTPMailer {
	return NewSMTPMailerWithConfig(SMTPConfig{
		Host:     shared.GetEnvOrDefault("SMTP_HOST", "localhost"),
		Port:     shared.GetEnvOrDefault("SMTP_PORT", "1025"),
		User:     shared.GetEnvOrDefault("SMTP_USER", ""),
		Password: shared.GetEnvOrDefault("SMTP_PASSWORD", ""),
		From:     shared.GetEnvOrDefault("MAIL_FROM", defaultFrom),
	})
}

// NewSMTPMailerWithConfig creates an SMTP mailer with custom configuration.
func NewSMTPMailerWithConfig(cfg SMTPConfig) *SMTPMailer {
	return &SMTPMailer{
		host:     cfg.Host,
		port:     cfg.Port,
		user:     cfg.User,
		password: cfg.Password,
		from:     cfg.From,
	}
}

// Send delivers an HTML email via SMTP.
// The to value may be a comma-separated list of addresses.
func (m *SMTPMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	recipients := parseRecipients(to)
	if len(recipients) == 0 {
		return fmt.Errorf("email recipient is required")
	}
	for _, recipient := range recipients {
		if !strings.Contains(recipient, "@") {
			return fmt.Errorf("invalid email address format: %q (missing @ symbol)", recipient)
		}
	}

	msg := buildMessage(m.from, recipients, subject, htmlBody)

	addr := fmt.Sprintf("%s:%s", m.host, m.port)
	port, err := strconv.Atoi(m.port)
	if err != nil {
		return fmt.Errorf("invalid SMTP port: %s", m.port)
	}

	// Port 587 uses STARTTLS, port 465 uses SSL/TLS. Anything else is treated
	// as a local development server (MailHog and the like).
	if port == 587 || port == 465 {
		err = m.sendWithTLS(addr, port, recipients, msg)
	} else {
		var auth smtp.Auth
		if m.user != "" && m.password != "" {
			auth = smtp.PlainAuth("", m.user, m.password, m.host)
		}
		err = smtp.SendMail(addr, auth, m.from, recipients, msg)
	}
	if err != nil {
		slog.Error("Failed to send email",
			"error", err,
			"smtp_server", addr,
			"to", strings.Join(recipients, ", "),
		)
		return fmt.Errorf("failed to send email: %w", err)
	}

	slog.Info("Successfully sent email notification",
		"from", m.from,
		"to", strings.Join(recipients, ", "),
		"subject", subject,
		"smtp_server", addr,
	)

	return nil
}

// sendWithTLS sends an email using TLS/STARTTLS for secure SMTP connections.
func (m *SMTPMailer) sendWithTLS(addr string, port int, recipients []string, msg []byte) error {
	var client *smtp.Client

	if port == 465 {
		conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: m.host})
		if err != nil {
			return fmt.Errorf("failed to connect to SMTP server with TLS: %w", err)
		}
		defer conn.Close()

		client, err = smtp.NewClient(conn, m.host)
		if err != nil {
			return fmt.Errorf("failed to create SMTP client: %w", err)
		}
		defer client.Close()
	} else {
		conn, err := net.Dial("tcp", addr)
		if err != nil {
			return fmt.Errorf("failed to connect to SMTP server: %w", err)
		}
		defer conn.Close()

		client, err = smtp.NewClient(conn, m.host)
		if err != nil {
			return fmt.Errorf("failed to create SMTP client: %w", err)
		}
		defer client.Close()

		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(&tls.Config{ServerName: m.host}); err != nil {
				return fmt.Errorf("failed to start TLS: %w", err)
			}
		}
	}

	if m.user != "" && m.password != "" {
		auth := smtp.PlainAuth("", m.user, m.password, m.host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP authentication failed: %w", err)
		}
	}

	if err := client.Mail(m.from); err != nil {
		return fmt.Errorf("failed to set sender %s: %w", m.from, err)
	}
	for _, recipient := range recipients {
		if err := client.Rcpt(recipient); err != nil {
			return fmt.Errorf("failed to set recipient %s: %w", recipient, err)
		}
	}

	writer, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to open data writer: %w", err)
	}
	if _, err := writer.Write(msg); err != nil {
		writer.Close()
		return fmt.Errorf("failed to write email data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	if err := client.Quit(); err != nil {
		slog.Warn("Error during SMTP QUIT", "error", err)
	}

	return nil
}

// buildMessage builds a complete email message in RFC 822 format.
func buildMessage(from string, to []string, subject, body string) []byte {
	var msg bytes.Buffer
	msg.WriteString(fmt.Sprintf("From: %s\r\n", from))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", strings.Join(to, ", ")))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	msg.WriteString(fmt.Sprintf("Date: %s\r\n", time.Now().Format(time.RFC1123Z)))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	msg.WriteString("Content-Transfer-Encoding: 8bit\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)
	return msg.Bytes()
}
