package model

const (
	SubscriptionStarter  = "starter"
	SubscriptionPro      = "pro"
	SubscriptionBusiness = "business"
)

// SubscriptionTiers lists the accepted subscription values in ascending order.
var SubscriptionTiers = []string{SubscriptionStarter, SubscriptionPro, SubscriptionBusiness}

func IsSubscriptionTier(s string) bool {
	for _, tier := range SubscriptionTiers {
		if s == tier {
			return true
		}
	}
	return false
}
