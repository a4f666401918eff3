// Package mailer delivers rendered emails through the configured transport.
package mailer

import (
	"context"
	"fmt"

	"github.com/krkdev/contacts-api/internal/config"
)

// Message is a single outgoing email.
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// New returns the Mailer selected by cfg.EmailDriver.
func New(cfg *config.Config) (Mailer, error) {
	switch cfg.EmailDriver {
	case config.EmailDriverResend:
		if cfg.ResendAPIKey == "" {
			return nil, fmt.Errorf("email driver resend requires RESEND_API_KEY")
		}
		return NewResend(cfg.ResendAPIKey, cfg.EmailFrom), nil
	case config.EmailDriverSMTP:
		return NewSMTP(cfg.SMTPHost, cfg.SMTPUser, cfg.SMTPPassword, cfg.EmailFrom, cfg.SMTPSkipVerify)
	case config.EmailDriverLog:
		return NewLog(), nil
	default:
		return nil, fmt.Errorf("unknown email driver %q", cfg.EmailDriver)
	}
}
