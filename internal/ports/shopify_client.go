package ports

import (
	"context"
	"net/url"

	shopify "github.com/bold-commerce/go-shopify/v4"
)

// ShopifyClient defines the Shopify operations used by the install flow
type ShopifyClient interface {
	// Authentication
	GenerateAuthURL(shop string, redirectURI string, state string) (string, error)
	ExchangeToken(ctx context.Context, shop string, code string) (string, error)

	// Shop API
	GetShop(ctx context.Context, shop string, accessToken string) (*shopify.Shop, error)
}

// CallbackVerifier validates the signature Shopify attaches to OAuth redirects
type CallbackVerifier interface {
	Verify(query url.Values) error
}
