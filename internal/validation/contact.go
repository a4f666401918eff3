package validation

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/krkdev/contacts-api/internal/model"
)

const (
	ContactNameMinLength  = 2
	ContactPhoneMinLength = 7
)

var (
	// ErrMissingFields is returned for an update without any known field.
	ErrMissingFields = errors.New("missing fields")
	// ErrMissingFavorite is returned when the favorite patch has no boolean.
	ErrMissingFavorite = errors.New("missing field favorite")
)

var contactKeys = []string{"name", "email", "phone", "favorite"}

// ValidateContactCreate checks a full contact payload.
func ValidateContactCreate(p Payload) (*model.Contact, error) {
	patch, err := contactFields(p, true)
	if err != nil {
		return nil, err
	}

	contact := &model.Contact{
		Name:  *patch.Name,
		Email: *patch.Email,
		Phone: *patch.Phone,
	}
	if patch.Favorite != nil {
		contact.Favorite = *patch.Favorite
	}

	return contact, nil
}

// ValidateContactUpdate checks a partial contact payload. At least one field
// must be present.
func ValidateContactUpdate(p Payload) (model.ContactPatch, error) {
	if len(p) == 0 {
		return model.ContactPatch{}, ErrMissingFields
	}

	patch, err := contactFields(p, false)
	if err != nil {
		return model.ContactPatch{}, err
	}
	if patch.IsEmpty() {
		return model.ContactPatch{}, ErrMissingFields
	}

	return patch, nil
}

// ValidateFavorite checks the {favorite} payload of the favorite patch.
func ValidateFavorite(p Payload) (bool, error) {
	favorite, ok, err := p.Bool("favorite")
	if err != nil || !ok {
		return false, ErrMissingFavorite
	}
	return favorite, nil
}

func contactFields(p Payload, required bool) (model.ContactPatch, error) {
	var patch model.ContactPatch

	name, err := stringField(p, "name", required, func(v string) error {
		if utf8.RuneCountInString(v) < ContactNameMinLength {
			return fmt.Errorf(`"name" length must be at least %d characters long`, ContactNameMinLength)
		}
		return nil
	})
	if err != nil {
		return patch, err
	}
	patch.Name = name

	email, err := stringField(p, "email", required, func(v string) error {
		if ValidateEmail(v) != nil {
			return errors.New(`"email" must be a valid email`)
		}
		return nil
	})
	if err != nil {
		return patch, err
	}
	patch.Email = email

	phone, err := stringField(p, "phone", required, func(v string) error {
		if utf8.RuneCountInString(v) < ContactPhoneMinLength {
			return fmt.Errorf(`"phone" length must be at least %d characters long`, ContactPhoneMinLength)
		}
		return nil
	})
	if err != nil {
		return patch, err
	}
	patch.Phone = phone

	favorite, ok, err := p.Bool("favorite")
	if err != nil {
		return patch, err
	}
	if ok {
		patch.Favorite = &favorite
	}

	if err := p.OnlyKeys(contactKeys...); err != nil {
		return patch, err
	}

	return patch, nil
}

func stringField(p Payload, key string, required bool, check func(string) error) (*string, error) {
	v, ok, err := p.String(key)
	if err != nil {
		return nil, err
	}
	if !ok {
		if required {
			return nil, fmt.Errorf(`"%s" is required`, key)
		}
		return nil, nil
	}

	v = strings.TrimSpace(v)
	if v == "" {
		return nil, fmt.Errorf(`"%s" is not allowed to be empty`, key)
	}
	if err := check(v); err != nil {
		return nil, err
	}

	return &v, nil
}
