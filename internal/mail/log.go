package mail

import (
	"context"
	"log/slog"
)

// LogSender writes mail to the log instead of delivering it. Used when no
// SMTP relay is configured, typically in development.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(ctx context.Context, to, subject, body string) error {
	s.logger.InfoContext(ctx, "mail not delivered, smtp not configured",
		"to", to,
		"subject", subject,
		"body", body,
	)
	return nil
}

func (s *LogSender) Close() error {
	return nil
}
