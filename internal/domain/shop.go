package domain

import (
	"regexp"
	"strings"
	"time"
)

// Shop is the per-merchant record created by the OAuth callback
type Shop struct {
	ID          string    `json:"id" bson:"_id"`
	Domain      string    `json:"shopDomain" bson:"shopDomain"` // Merchant storefront domain, unique
	AccessToken string    `json:"-" bson:"accessToken"`         // Admin API token from the OAuth exchange
	AgeLimit    int       `json:"ageLimit" bson:"ageLimit"`     // Minimum age for a regulated purchase
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updatedAt"`
}

// DefaultAgeLimit is assigned to a shop the first time it installs the app
const DefaultAgeLimit = 0

var shopHostPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*\.myshopify\.com$`)

// NormalizeShopDomain lowercases and trims a shop parameter
func NormalizeShopDomain(shop string) string {
	return strings.ToLower(strings.TrimSpace(shop))
}

// IsValidShopDomain reports whether shop is a bare *.myshopify.com hostname.
// The OAuth flow only ever talks to hosts that pass this check.
func IsValidShopDomain(shop string) bool {
	return shopHostPattern.MatchString(shop)
}
