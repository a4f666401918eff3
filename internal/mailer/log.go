package mailer

import (
	"context"
	"log/slog"
)

// LogMailer only logs outgoing mail. Used in development.
type LogMailer struct{}

func NewLog() *LogMailer {
	return &LogMailer{}
}

func (m *LogMailer) Send(_ context.Context, msg Message) error {
	slog.Info("email sent (dev mode)", "to", msg.To, "subject", msg.Subject, "body", msg.Text)
	return nil
}
