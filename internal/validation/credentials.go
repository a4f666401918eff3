package validation

import (
	"errors"
	"fmt"
)

// Credentials is a validated signup or login payload.
type Credentials struct {
	Email    string
	Password string
}

// ValidateCredentials checks {email, password}. The returned email is
// canonical.
func ValidateCredentials(p Payload) (Credentials, error) {
	email, err := requiredEmail(p, "email")
	if err != nil {
		return Credentials{}, err
	}

	password, ok, err := p.String("password")
	if err != nil {
		return Credentials{}, err
	}
	if !ok {
		return Credentials{}, errors.New(`"password" is required`)
	}
	if err := ValidatePassword(password); err != nil {
		return Credentials{}, err
	}

	if err := p.OnlyKeys("email", "password"); err != nil {
		return Credentials{}, err
	}

	return Credentials{Email: email, Password: password}, nil
}

// ValidateEmailOnly checks the resend-verification payload {email}.
func ValidateEmailOnly(p Payload) (string, error) {
	return requiredEmail(p, "email")
}

func requiredEmail(p Payload, key string) (string, error) {
	raw, ok, err := p.String(key)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf(`"%s" is required`, key)
	}

	email := NormalizeEmail(raw)
	if email == "" {
		return "", fmt.Errorf(`"%s" is not allowed to be empty`, key)
	}
	if ValidateEmail(email) != nil {
		return "", fmt.Errorf(`"%s" must be a valid email`, key)
	}

	return email, nil
}
