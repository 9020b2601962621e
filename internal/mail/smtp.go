package mail

import (
	"context"
	"errors"
	"strings"

	"github.com/mblog/apiserver/config"
	gomail "github.com/wneessen/go-mail"
)

// SMTPSender delivers mail through an SMTP relay with STARTTLS.
type SMTPSender struct {
	client *gomail.Client
	from   string
}

// NewSMTPSender constructs an SMTP backend from config.
func NewSMTPSender(cfg config.SMTPConfig) (*SMTPSender, error) {
	if strings.TrimSpace(cfg.Host) == "" {
		return nil, errors.New("smtp host is required")
	}
	if strings.TrimSpace(cfg.From) == "" {
		return nil, errors.New("smtp from address is required")
	}

	opts := []gomail.Option{
		gomail.WithPort(cfg.Port),
		gomail.WithTLSPolicy(gomail.TLSMandatory),
	}
	if cfg.User != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.User),
			gomail.WithPassword(cfg.Password),
		)
	}

	client, err := gomail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, err
	}

	return &SMTPSender{client: client, from: cfg.From}, nil
}

// Send delivers a plain-text message.
func (s *SMTPSender) Send(ctx context.Context, to, subject, body string) error {
	msg := gomail.NewMsg()
	if err := msg.From(s.from); err != nil {
		return err
	}
	if err := msg.To(to); err != nil {
		return err
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextPlain, body)

	return s.client.DialAndSendWithContext(ctx, msg)
}

// Close closes the SMTP client connection.
func (s *SMTPSender) Close() error {
	return s.client.Close()
}
