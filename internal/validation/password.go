package validation

import (
	"fmt"
	"unicode/utf8"
)

const (
	PasswordMinLength = 6
	// bcrypt silently truncates anything longer
	PasswordMaxBytes = 72
)

// ValidatePassword checks the password length bounds. Messages name the
// field the way the request schema does.
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < PasswordMinLength {
		return fmt.Errorf(`"password" length must be at least %d characters long`, PasswordMinLength)
	}

	if len(password) > PasswordMaxBytes {
		return fmt.Errorf(`"password" length must be less than or equal to %d characters long`, PasswordMaxBytes)
	}

	return nil
}
