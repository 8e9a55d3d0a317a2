package ports

import (
	"context"

	"age-checker-shopify-layer/internal/domain"
)

// ShopRepository defines the interface for shop record persistence
type ShopRepository interface {
	// UpsertAccessToken atomically creates the shop with the default age limit,
	// or replaces only the access token of an existing shop
	UpsertAccessToken(ctx context.Context, shopDomain string, accessToken string) (*domain.Shop, error)

	// GetByDomain retrieves a shop, returning domain.ErrShopNotFound if absent
	GetByDomain(ctx context.Context, shopDomain string) (*domain.Shop, error)

	// SetAgeLimit updates the age limit and returns the updated shop,
	// returning domain.ErrShopNotFound if absent
	SetAgeLimit(ctx context.Context, shopDomain string, ageLimit int) (*domain.Shop, error)
}

// AgeLimitCache is a read-through cache in front of ShopRepository age limits
type AgeLimitCache interface {
	Get(ctx context.Context, shopDomain string) (ageLimit int, found bool, err error)
	Set(ctx context.Context, shopDomain string, ageLimit int) error
}
