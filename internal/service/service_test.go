package service

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/krkdev/contacts-api/internal/db/dbtest"
	"github.com/krkdev/contacts-api/internal/mailer"
	"github.com/krkdev/contacts-api/internal/markdown"
	"github.com/krkdev/contacts-api/internal/repository"
	"github.com/stretchr/testify/require"
)

// captureMailer records every message; Send fails when err is set.
type captureMailer struct {
	mu   sync.Mutex
	sent []mailer.Message
	err  error
}

func (m *captureMailer) Send(_ context.Context, msg mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

var verifyLink = regexp.MustCompile(`/api/users/verify/([0-9a-f-]{36})`)

// lastToken returns the verification token from the newest message to email.
func (m *captureMailer) lastToken(t *testing.T, email string) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := len(m.sent) - 1; i >= 0; i-- {
		if m.sent[i].To != email {
			continue
		}
		match := verifyLink.FindStringSubmatch(m.sent[i].Text)
		require.NotNil(t, match, "message has no verification link")
		return match[1]
	}
	t.Fatalf("no message sent to %s", email)
	return ""
}

type testEnv struct {
	db       *sqlx.DB
	mailer   *captureMailer
	auth     *AuthService
	users    *UserService
	contacts *ContactService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	database := dbtest.New(t)
	m := &captureMailer{}

	userRepo := repository.NewUserRepository(database)
	emailService := NewEmailService(m, markdown.NewParser(), "http://localhost:3000", "Contacts")

	return &testEnv{
		db:     database,
		mailer: m,
		auth: NewAuthService(
			userRepo,
			repository.NewSessionRepository(database),
			repository.NewTokenRepository(database),
			emailService,
			"test-secret",
			time.Hour,
			24*time.Hour,
		),
		users:    NewUserService(userRepo),
		contacts: NewContactService(repository.NewContactRepository(database)),
	}
}

var errSMTPDown = errors.New("smtp down")
