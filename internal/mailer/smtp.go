package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/mail"
	"net/url"

	"github.com/dajohi/goemail"
)

// SMTPMailer sends plain text email over SMTPS.
type SMTPMailer struct {
	client      *goemail.SMTP
	mailName    string
	mailAddress string
}

func NewSMTP(host, user, password, from string, skipVerify bool) (*SMTPMailer, error) {
	if host == "" {
		return nil, fmt.Errorf("email driver smtp requires SMTP_HOST")
	}

	u := &url.URL{Scheme: "smtps", Host: host}
	if user != "" {
		u.User = url.UserPassword(user, password)
	}

	a, err := mail.ParseAddress(from)
	if err != nil {
		return nil, fmt.Errorf("parse EMAIL_FROM: %w", err)
	}

	tlsConfig := &tls.Config{
		InsecureSkipVerify: skipVerify,
	}

	client, err := goemail.NewSMTP(u.String(), tlsConfig)
	if err != nil {
		return nil, fmt.Errorf("init smtp client: %w", err)
	}

	return &SMTPMailer{
		client:      client,
		mailName:    a.Name,
		mailAddress: a.Address,
	}, nil
}

// Send ignores ctx, the underlying client has no cancellation support.
func (m *SMTPMailer) Send(_ context.Context, msg Message) error {
	email := goemail.NewMessage(m.mailAddress, msg.Subject, msg.Text)
	email.AddTo(msg.To)
	email.SetName(m.mailName)

	if err := m.client.Send(email); err != nil {
		return err
	}

	slog.Info("email sent", "driver", "smtp", "to", msg.To)
	return nil
}
