package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func payload(t *testing.T, body string) Payload {
	t.Helper()
	p, err := ParsePayload(strings.NewReader(body))
	require.NoError(t, err)
	return p
}

func TestParsePayload(t *testing.T) {
	p, err := ParsePayload(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, p)

	_, err = ParsePayload(strings.NewReader(`[1,2]`))
	assert.ErrorIs(t, err, ErrNotObject)

	_, err = ParsePayload(strings.NewReader(`null`))
	assert.ErrorIs(t, err, ErrNotObject)

	_, err = ParsePayload(strings.NewReader(`{"a":`))
	assert.ErrorIs(t, err, ErrNotObject)
}

func TestValidateEmail(t *testing.T) {
	valid := []string{"a@b.com", "first.last@sub.example.co.uk", "x+tag@example.io"}
	for _, e := range valid {
		assert.NoError(t, ValidateEmail(e), e)
	}

	invalid := []string{"", "plain", "a@localhost", "Name <a@b.com>", "a@b.", "a@.com", strings.Repeat("a", 250) + "@b.com"}
	for _, e := range invalid {
		assert.Error(t, ValidateEmail(e), e)
	}
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "user@example.com", NormalizeEmail("  User@Example.COM "))
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, ValidatePassword("secret"))
	assert.EqualError(t, ValidatePassword("short"), `"password" length must be at least 6 characters long`)
	assert.Error(t, ValidatePassword(strings.Repeat("x", 73)))
}

func TestValidateCredentials(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"valid", `{"email":" Test@Mail.com ","password":"secret1"}`, ""},
		{"missing email", `{"password":"secret1"}`, `"email" is required`},
		{"bad email", `{"email":"nope","password":"secret1"}`, `"email" must be a valid email`},
		{"email not string", `{"email":42,"password":"secret1"}`, `"email" must be a string`},
		{"missing password", `{"email":"a@b.com"}`, `"password" is required`},
		{"short password", `{"email":"a@b.com","password":"123"}`, `"password" length must be at least 6 characters long`},
		{"unknown key", `{"email":"a@b.com","password":"secret1","role":"admin"}`, `"role" is not allowed`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			creds, err := ValidateCredentials(payload(t, tt.body))
			if tt.wantErr != "" {
				assert.EqualError(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "test@mail.com", creds.Email)
			assert.Equal(t, "secret1", creds.Password)
		})
	}
}

func TestValidateContactCreate(t *testing.T) {
	c, err := ValidateContactCreate(payload(t, `{"name":"Ann Lee","email":"ann@x.io","phone":"1234567","favorite":true}`))
	require.NoError(t, err)
	assert.Equal(t, "Ann Lee", c.Name)
	assert.True(t, c.Favorite)

	tests := []struct {
		body    string
		wantErr string
	}{
		{`{"email":"ann@x.io","phone":"1234567"}`, `"name" is required`},
		{`{"name":"A","email":"ann@x.io","phone":"1234567"}`, `"name" length must be at least 2 characters long`},
		{`{"name":"Ann","email":"ann","phone":"1234567"}`, `"email" must be a valid email`},
		{`{"name":"Ann","email":"ann@x.io","phone":"12"}`, `"phone" length must be at least 7 characters long`},
		{`{"name":"Ann","email":"ann@x.io","phone":"1234567","favorite":"yes"}`, `"favorite" must be a boolean`},
		{`{"name":"Ann","email":"ann@x.io","phone":1234567}`, `"phone" must be a string`},
	}
	for _, tt := range tests {
		_, err := ValidateContactCreate(payload(t, tt.body))
		assert.EqualError(t, err, tt.wantErr, tt.body)
	}
}

func TestValidateContactUpdate(t *testing.T) {
	patch, err := ValidateContactUpdate(payload(t, `{"phone":"7654321"}`))
	require.NoError(t, err)
	require.NotNil(t, patch.Phone)
	assert.Equal(t, "7654321", *patch.Phone)
	assert.Nil(t, patch.Name)

	_, err = ValidateContactUpdate(payload(t, `{}`))
	assert.ErrorIs(t, err, ErrMissingFields)

	_, err = ValidateContactUpdate(payload(t, `{"name":"A"}`))
	assert.Error(t, err)
}

func TestValidateFavorite(t *testing.T) {
	fav, err := ValidateFavorite(payload(t, `{"favorite":false}`))
	require.NoError(t, err)
	assert.False(t, fav)

	for _, body := range []string{`{}`, `{"favorite":"true"}`, `{"favorite":null}`, `{"favorite":1}`} {
		_, err := ValidateFavorite(payload(t, body))
		assert.ErrorIs(t, err, ErrMissingFavorite, body)
	}
}

func TestValidateSubscription(t *testing.T) {
	tier, err := ValidateSubscription(payload(t, `{"subscription":"pro"}`))
	require.NoError(t, err)
	assert.Equal(t, "pro", tier)

	_, err = ValidateSubscription(payload(t, `{"subscription":"gold"}`))
	assert.EqualError(t, err, `"subscription" must be one of [starter, pro, business]`)

	_, err = ValidateSubscription(payload(t, `{}`))
	assert.EqualError(t, err, `"subscription" is required`)
}
