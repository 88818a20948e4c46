package identity

import (
	"context"
	"log/slog"
)

// Mailer delivers account emails.
type Mailer interface {
	SendVerification(ctx context.Context, to, link string) error
}

// LogMailer writes verification links to the log instead of sending mail.
type LogMailer struct {
	log *slog.Logger
}

func NewLogMailer(logger *slog.Logger) *LogMailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogMailer{log: logger.With("component", "mailer")}
}

func (m *LogMailer) SendVerification(ctx context.Context, to, link string) error {
	m.log.InfoContext(ctx, "verification email", "to", to, "link", link)
	return nil
}
