package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/krkdev/contacts-api/internal/mailer"
	"github.com/krkdev/contacts-api/internal/markdown"
)

const emailSendTimeout = 10 * time.Second

type EmailService struct {
	mailer  mailer.Mailer
	parser  *markdown.Parser
	appURL  string
	appName string
}

func NewEmailService(m mailer.Mailer, parser *markdown.Parser, appURL, appName string) *EmailService {
	return &EmailService{
		mailer:  m,
		parser:  parser,
		appURL:  appURL,
		appName: appName,
	}
}

// VerificationURL is the link a user opens to redeem token.
func (s *EmailService) VerificationURL(token string) string {
	return fmt.Sprintf("%s/api/users/verify/%s", s.appURL, token)
}

// SendVerificationEmail renders and sends the verification email. The send
// outlives a canceled request context but not the send timeout.
func (s *EmailService) SendVerificationEmail(ctx context.Context, email, token string) error {
	verifyURL := s.VerificationURL(token)

	rendered, err := s.parser.RenderEmail("verify_email", map[string]string{
		"AppName": s.appName,
		"URL":     verifyURL,
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), emailSendTimeout)
	defer cancel()

	err = s.mailer.Send(ctx, mailer.Message{
		To:      email,
		Subject: rendered.Subject,
		HTML:    rendered.HTML,
		Text:    rendered.Text,
	})
	if err != nil {
		return fmt.Errorf("send verification email: %w", err)
	}

	slog.Debug("verification email dispatched", "to", email, "url", verifyURL)
	return nil
}
