package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/krkdev/contacts-api/internal/apperr"
	"github.com/krkdev/contacts-api/internal/model"
	"github.com/krkdev/contacts-api/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var alice = validation.Credentials{Email: "alice@example.com", Password: "secret123"}

func signupVerified(t *testing.T, env *testEnv, creds validation.Credentials) *model.User {
	t.Helper()
	ctx := context.Background()

	user, err := env.auth.Signup(ctx, creds)
	require.NoError(t, err)
	require.NoError(t, env.auth.Verify(ctx, env.mailer.lastToken(t, creds.Email)))
	return user
}

func TestSignup(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user, err := env.auth.Signup(ctx, alice)
	require.NoError(t, err)

	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, model.SubscriptionStarter, user.Subscription)
	assert.False(t, user.Verified)
	assert.True(t, strings.HasPrefix(user.AvatarURL, "https://www.gravatar.com/avatar/"))
	assert.NotEqual(t, alice.Password, user.PasswordHash)

	require.Len(t, env.mailer.sent, 1)
	assert.Equal(t, "Email Verification", env.mailer.sent[0].Subject)
	assert.Contains(t, env.mailer.sent[0].Text, "http://localhost:3000/api/users/verify/")

	_, err = env.auth.Signup(ctx, alice)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	assert.Equal(t, MsgEmailInUse, apperr.MessageOf(err, ""))
}

func TestSignup_MailFailureIsNotSurfaced(t *testing.T) {
	env := newTestEnv(t)
	env.mailer.err = errSMTPDown

	_, err := env.auth.Signup(context.Background(), alice)
	assert.NoError(t, err)
}

func TestLogin_RequiresVerification(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.auth.Signup(ctx, alice)
	require.NoError(t, err)

	_, _, err = env.auth.Login(ctx, alice)
	assert.Equal(t, MsgEmailNotVerified, apperr.MessageOf(err, ""))

	var sessions int
	require.NoError(t, env.db.Get(&sessions, `SELECT COUNT(*) FROM sessions`))
	assert.Zero(t, sessions, "no session is stored for unverified users")

	require.NoError(t, env.auth.Verify(ctx, env.mailer.lastToken(t, alice.Email)))

	token, user, err := env.auth.Login(ctx, alice)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.True(t, user.Verified)
}

func TestLogin_WrongCredentials(t *testing.T) {
	env := newTestEnv(t)
	signupVerified(t, env, alice)
	ctx := context.Background()

	_, _, err := env.auth.Login(ctx, validation.Credentials{Email: alice.Email, Password: "wrong-pass"})
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
	assert.Equal(t, MsgInvalidCredentials, apperr.MessageOf(err, ""))

	_, _, err = env.auth.Login(ctx, validation.Credentials{Email: "nobody@example.com", Password: "secret123"})
	assert.Equal(t, MsgInvalidCredentials, apperr.MessageOf(err, ""))
}

func TestAuthenticate_SingleSession(t *testing.T) {
	env := newTestEnv(t)
	user := signupVerified(t, env, alice)
	ctx := context.Background()

	first, _, err := env.auth.Login(ctx, alice)
	require.NoError(t, err)

	got, hash, err := env.auth.Authenticate(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, HashToken(first), hash)

	second, _, err := env.auth.Login(ctx, alice)
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	_, _, err = env.auth.Authenticate(ctx, first)
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err), "older token is revoked")

	_, hash, err = env.auth.Authenticate(ctx, second)
	require.NoError(t, err)

	require.NoError(t, env.auth.Logout(ctx, hash))
	_, _, err = env.auth.Authenticate(ctx, second)
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err), "logged out token is revoked")

	assert.NoError(t, env.auth.Logout(ctx, hash), "logout is idempotent")
}

func TestAuthenticate_RejectsBadTokens(t *testing.T) {
	env := newTestEnv(t)
	user := signupVerified(t, env, alice)
	ctx := context.Background()

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"exp":     time.Now().Add(-time.Minute).Unix(),
	})
	expiredToken, err := expired.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	otherKey := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	forged, err := otherKey.SignedString([]byte("other-secret"))
	require.NoError(t, err)

	for _, token := range []string{"", "garbage", expiredToken, forged} {
		_, _, err := env.auth.Authenticate(ctx, token)
		assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err), token)
		assert.Equal(t, MsgNotAuthorized, apperr.MessageOf(err, ""))
	}
}

func TestVerify_SingleUse(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.auth.Signup(ctx, alice)
	require.NoError(t, err)
	token := env.mailer.lastToken(t, alice.Email)

	require.NoError(t, env.auth.Verify(ctx, token))

	err = env.auth.Verify(ctx, token)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	assert.Equal(t, MsgUserNotFound, apperr.MessageOf(err, ""))

	err = env.auth.Verify(ctx, "00000000-0000-0000-0000-000000000000")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestResendVerification(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.auth.Signup(ctx, alice)
	require.NoError(t, err)
	oldToken := env.mailer.lastToken(t, alice.Email)

	require.NoError(t, env.auth.ResendVerification(ctx, alice.Email))
	newToken := env.mailer.lastToken(t, alice.Email)
	require.NotEqual(t, oldToken, newToken)

	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(env.auth.Verify(ctx, oldToken)), "old token is invalidated")
	require.NoError(t, env.auth.Verify(ctx, newToken))

	err = env.auth.ResendVerification(ctx, alice.Email)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Equal(t, MsgAlreadyVerified, apperr.MessageOf(err, ""))

	err = env.auth.ResendVerification(ctx, "ghost@example.com")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestGravatarURL(t *testing.T) {
	// md5("test@example.com")
	assert.Equal(t,
		"https://www.gravatar.com/avatar/55502f40dc8b7c769880b10874abc9d0?s=250&d=identicon",
		GravatarURL(" Test@Example.com"),
	)
}
