package mail

import (
	"context"
	"fmt"
	"net/url"
)

// Sender defines the delivery operation a mail backend provides.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
	Close() error
}

// Mailer wraps a Sender backend with the messages the app sends.
type Mailer struct {
	backend Sender
	baseURL string
}

// NewMailer constructs a Mailer for the provided backend. baseURL is the
// externally reachable address used to build links.
func NewMailer(backend Sender, baseURL string) *Mailer {
	return &Mailer{backend: backend, baseURL: baseURL}
}

// SendVerificationEmail delivers the email-verification link for token.
func (m *Mailer) SendVerificationEmail(ctx context.Context, to, token string) error {
	link := fmt.Sprintf("%s/auth/verify-email?token=%s", m.baseURL, url.QueryEscape(token))
	body := fmt.Sprintf("Click to verify your email: %s", link)
	return m.backend.Send(ctx, to, "Verify your email", body)
}

// Close closes the underlying backend.
func (m *Mailer) Close() error {
	return m.backend.Close()
}
