package mailer

import (
	"context"
	"testing"

	"github.com/krkdev/contacts-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_SelectsDriver(t *testing.T) {
	m, err := New(&config.Config{EmailDriver: config.EmailDriverLog})
	require.NoError(t, err)
	assert.IsType(t, &LogMailer{}, m)
	assert.NoError(t, m.Send(context.Background(), Message{To: "a@b.com", Subject: "hi"}))

	m, err = New(&config.Config{EmailDriver: config.EmailDriverResend, ResendAPIKey: "re_test", EmailFrom: "noreply@example.com"})
	require.NoError(t, err)
	assert.IsType(t, &ResendMailer{}, m)

	_, err = New(&config.Config{EmailDriver: config.EmailDriverResend})
	assert.Error(t, err)

	_, err = New(&config.Config{EmailDriver: config.EmailDriverSMTP, EmailFrom: "noreply@example.com"})
	assert.ErrorContains(t, err, "SMTP_HOST")

	_, err = New(&config.Config{EmailDriver: "pigeon"})
	assert.Error(t, err)
}
