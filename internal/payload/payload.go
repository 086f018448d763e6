// Package payload renders notification subjects and bodies from domain events.
// Rendering is a pure function of the event kind and its fields.
package payload

import (
	"fmt"

	"notification-service/internal/events"
)

// EmailPayload represents rendered email content.
type EmailPayload struct {
	Subject string
	Body    string
}

// BuildTransactionPayload renders the email for a transaction event.
func BuildTransactionPayload(event *events.TransactionEvent) EmailPayload {
	body := fmt.Sprintf(`<html>
    <body>
        <h2>Transaction Alert</h2>
        <p>Dear Customer,</p>
        <p>Your transaction with reference %s has been processed.</p>
        <p><strong>Amount:</strong> %.2f</p>
        <p><strong>Type:</strong> %s</p>
        <p><strong>Status:</strong> %s</p>
        <p>Thank you for banking with us.</p>
    </body>
</html>`,
		event.TransactionReference,
		event.Amount,
		event.Type,
		event.Status)

	return EmailPayload{
		Subject: "Transaction Notification",
		Body:    body,
	}
}

// BuildAccountPayload renders the email for an account event.
func BuildAccountPayload(event *events.AccountEvent) EmailPayload {
	body := fmt.Sprintf(`<html>
    <body>
        <h2>Account Notification</h2>
        <p>Dear Customer,</p>
        <p>We're writing to inform you about your account:</p>
        <p><strong>Account Number:</strong> %s</p>
        <p><strong>Event:</strong> %s</p>
        <p><strong>Balance:</strong> %.2f %s</p>
        <p><strong>Created:</strong> %s</p>
        <p>Thank you for banking with us.</p>
    </body>
</html>`,
		event.AccountNumber,
		event.EventType,
		event.Balance,
		event.Currency,
		event.CreatedAt.Format("2006-01-02 15:04:05"))

	return EmailPayload{
		Subject: "Account Notification",
		Body:    body,
	}
}
