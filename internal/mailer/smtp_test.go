package mailer

import (
	"context"
	"reflect"
	"strings"
	"testing"
)

func TestParseRecipients(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  []string
	}{
		{name: "single address", value: "a@example.com", want: []string{"a@example.com"}},
		{name: "multiple addresses", value: "a@example.com,b@example.com", want: []string{"a@example.com", "b@example.com"}},
		{name: "whitespace trimmed", value: " a@example.com , b@example.com ", want: []string{"a@example.com", "b@example.com"}},
		{name: "empty entries dropped", value: "a@example.com,,", want: []string{"a@example.com"}},
		{name: "empty string", value: "", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseRecipients(tt.value)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseRecipients(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestSMTPMailer_Send_Validation(t *testing.T) {
	m := NewSMTPMailerWithConfig(SMTPConfig{
		Host: "localhost",
		Port: "1025",
		From: "noreply@bankapp.com",
	})

	tests := []struct {
		name    string
		to      string
		errPart string
	}{
		{name: "empty recipient", to: "", errPart: "recipient is required"},
		{name: "missing at symbol", to: "not-an-email", errPart: "missing @ symbol"},
		{name: "one bad address in list", to: "good@example.com,bad", errPart: "missing @ symbol"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := m.Send(context.Background(), tt.to, "Subject", "<html></html>")
			if err == nil {
				t.Fatal("Send() error = nil, want validation error")
			}
			if !strings.Contains(err.Error(), tt.errPart) {
				t.Errorf("Send() error = %v, want error containing %q", err, tt.errPart)
			}
		})
	}
}

func TestSMTPMailer_Send_InvalidPort(t *testing.T) {
	m := NewSMTPMailerWithConfig(SMTPConfig{
		Host: "localhost",
		Port: "not-a-port",
		From: "noreply@bankapp.com",
	})

	err := m.Send(context.Background(), "user@example.com", "Subject", "Body")
	if err == nil || !strings.Contains(err.Error(), "invalid SMTP port") {
		t.Errorf("Send() error = %v, want invalid port error", err)
	}
}

func TestBuildMessage(t *testing.T) {
	msg := string(buildMessage("noreply@bankapp.com", []string{"a@example.com", "b@example.com"}, "Hello", "<p>Hi</p>"))

	wantFragments := []string{
		"From: noreply@bankapp.com\r\n",
		"To: a@example.com, b@example.com\r\n",
		"Subject: Hello\r\n",
		"MIME-Version: 1.0\r\n",
		"Content-Type: text/html; charset=UTF-8\r\n",
		"\r\n\r\n<p>Hi</p>",
	}
	for _, fragment := range wantFragments {
		if !strings.Contains(msg, fragment) {
			t.Errorf("message missing %q:\n%s", fragment, msg)
		}
	}

	// The blank line separating headers from body must come after all headers.
	headerEnd := strings.Index(msg, "\r\n\r\n")
	if headerEnd == -1 {
		t.Fatal("message has no header/body separator")
	}
	if strings.Contains(msg[headerEnd+4:], "Content-Type") {
		t.Error("headers found after body separator")
	}
}
