package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/krkdev/contacts-api/internal/model"
)

// ValidateSubscription checks the {subscription} payload.
func ValidateSubscription(p Payload) (string, error) {
	tier, ok, err := p.String("subscription")
	if err != nil {
		return "", err
	}
	if !ok {
		return "", errors.New(`"subscription" is required`)
	}
	if !model.IsSubscriptionTier(tier) {
		return "", fmt.Errorf(`"subscription" must be one of [%s]`, strings.Join(model.SubscriptionTiers, ", "))
	}
	if err := p.OnlyKeys("subscription"); err != nil {
		return "", err
	}
	return tier, nil
}
