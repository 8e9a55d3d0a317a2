package application

import (
	"context"
	"net/url"
	"sync"
	"time"

	"age-checker-shopify-layer/internal/domain"

	goshopify "github.com/bold-commerce/go-shopify/v4"
)

type memoryShopRepository struct {
	mu        sync.Mutex
	shops     map[string]*domain.Shop
	upsertErr error
	upserts   int
}

func newMemoryShopRepository() *memoryShopRepository {
	return &memoryShopRepository{shops: map[string]*domain.Shop{}}
}

func (r *memoryShopRepository) UpsertAccessToken(_ context.Context, shopDomain string, accessToken string) (*domain.Shop, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.upserts++
	if r.upsertErr != nil {
		return nil, r.upsertErr
	}

	now := time.Now()
	shop, ok := r.shops[shopDomain]
	if !ok {
		shop = &domain.Shop{Domain: shopDomain, AgeLimit: domain.DefaultAgeLimit, CreatedAt: now}
		r.shops[shopDomain] = shop
	}
	shop.AccessToken = accessToken
	shop.UpdatedAt = now

	copied := *shop
	return &copied, nil
}

func (r *memoryShopRepository) GetByDomain(_ context.Context, shopDomain string) (*domain.Shop, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	shop, ok := r.shops[shopDomain]
	if !ok {
		return nil, domain.ErrShopNotFound
	}
	copied := *shop
	return &copied, nil
}

func (r *memoryShopRepository) SetAgeLimit(_ context.Context, shopDomain string, ageLimit int) (*domain.Shop, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	shop, ok := r.shops[shopDomain]
	if !ok {
		return nil, domain.ErrShopNotFound
	}
	shop.AgeLimit = ageLimit
	copied := *shop
	return &copied, nil
}

func (r *memoryShopRepository) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.shops)
}

type fakeShopifyClient struct {
	mu          sync.Mutex
	token       string
	exchangeErr error
	getShopErr  error
	exchanged   []string
	fetched     []string
}

func (c *fakeShopifyClient) GenerateAuthURL(shop string, redirectURI string, state string) (string, error) {
	q := url.Values{}
	q.Set("state", state)
	q.Set("redirect_uri", redirectURI)
	return "https://" + shop + "/admin/oauth/authorize?" + q.Encode(), nil
}

func (c *fakeShopifyClient) ExchangeToken(_ context.Context, shop string, code string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.exchanged = append(c.exchanged, code)
	if c.exchangeErr != nil {
		return "", c.exchangeErr
	}
	return c.token, nil
}

func (c *fakeShopifyClient) GetShop(_ context.Context, shop string, accessToken string) (*goshopify.Shop, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fetched = append(c.fetched, accessToken)
	if c.getShopErr != nil {
		return nil, c.getShopErr
	}
	return &goshopify.Shop{Name: "Shop One", Domain: shop}, nil
}

type fakeVerifier struct {
	err error
}

func (v fakeVerifier) Verify(url.Values) error { return v.err }

type memoryCache struct {
	mu     sync.Mutex
	limits map[string]int
	getErr error
	gets   int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{limits: map[string]int{}}
}

func (c *memoryCache) Get(_ context.Context, shopDomain string) (int, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	if c.getErr != nil {
		return 0, false, c.getErr
	}
	limit, ok := c.limits[shopDomain]
	return limit, ok, nil
}

func (c *memoryCache) Set(_ context.Context, shopDomain string, ageLimit int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.limits[shopDomain] = ageLimit
	return nil
}
