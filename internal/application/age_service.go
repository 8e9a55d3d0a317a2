package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"age-checker-shopify-layer/internal/domain"
	"age-checker-shopify-layer/internal/ports"

	"github.com/rs/zerolog"
)

// AgeService manages per-shop age limits and checks customers against them
type AgeService struct {
	shops  ports.ShopRepository
	cache  ports.AgeLimitCache
	now    func() time.Time
	logger zerolog.Logger
}

// NewAgeService creates a new age service
func NewAgeService(shops ports.ShopRepository, cache ports.AgeLimitCache, logger zerolog.Logger) *AgeService {
	return &AgeService{
		shops:  shops,
		cache:  cache,
		now:    time.Now,
		logger: logger,
	}
}

// SetAgeLimit stores a new age limit for an installed shop
func (s *AgeService) SetAgeLimit(ctx context.Context, shopDomain string, rawAge string) (*domain.Shop, error) {
	shopDomain = domain.NormalizeShopDomain(shopDomain)
	if shopDomain == "" {
		return nil, domain.NewError(domain.KindMissingParameter, "Missing shop domain")
	}
	if rawAge == "" {
		return nil, domain.NewError(domain.KindMissingParameter, "Missing age parameter. Please add ?age=<minimum age> to your request")
	}
	limit, err := domain.ParseAgeLimit(rawAge)
	if err != nil {
		return nil, domain.WrapError(domain.KindInvalidParameter, "Age must be a non-negative whole number", err)
	}

	shop, err := s.shops.SetAgeLimit(ctx, shopDomain, limit)
	if err != nil {
		return nil, lookupError(shopDomain, err)
	}

	if err := s.cache.Set(ctx, shopDomain, shop.AgeLimit); err != nil {
		s.logger.Warn().Err(err).Str("shop", shopDomain).Msg("Failed to refresh age limit cache")
	}

	s.logger.Info().Str("shop", shopDomain).Int("ageLimit", shop.AgeLimit).Msg("Age limit updated")
	return shop, nil
}

// GetAgeLimit returns the configured age limit for a shop
func (s *AgeService) GetAgeLimit(ctx context.Context, shopDomain string) (int, error) {
	shopDomain = domain.NormalizeShopDomain(shopDomain)
	if shopDomain == "" {
		return 0, domain.NewError(domain.KindMissingParameter, "Missing shop domain")
	}
	return s.ageLimit(ctx, shopDomain)
}

// VerifyAge resolves a customer's age and compares it with the shop's limit
func (s *AgeService) VerifyAge(ctx context.Context, shopDomain string, rawUserAge string) (*domain.AgeVerification, error) {
	shopDomain = domain.NormalizeShopDomain(shopDomain)
	if shopDomain == "" || rawUserAge == "" {
		return nil, domain.NewError(domain.KindMissingParameter, "Required parameters missing. Please provide shopDomain and userAge")
	}

	age, err := domain.ResolveAge(rawUserAge, s.now())
	if err != nil {
		return nil, domain.WrapError(domain.KindInvalidParameter, "userAge must be an age or a birth date like 2000-01-31", err)
	}

	limit, err := s.ageLimit(ctx, shopDomain)
	if err != nil {
		return nil, err
	}

	result := domain.VerifyAge(age, limit)
	return &result, nil
}

// ageLimit reads through the cache to the shop store
func (s *AgeService) ageLimit(ctx context.Context, shopDomain string) (int, error) {
	limit, found, err := s.cache.Get(ctx, shopDomain)
	if err != nil {
		s.logger.Warn().Err(err).Str("shop", shopDomain).Msg("Age limit cache read failed")
	}
	if found {
		return limit, nil
	}

	shop, err := s.shops.GetByDomain(ctx, shopDomain)
	if err != nil {
		return 0, lookupError(shopDomain, err)
	}

	if err := s.cache.Set(ctx, shopDomain, shop.AgeLimit); err != nil {
		s.logger.Warn().Err(err).Str("shop", shopDomain).Msg("Failed to populate age limit cache")
	}
	return shop.AgeLimit, nil
}

func lookupError(shopDomain string, err error) error {
	if errors.Is(err, domain.ErrShopNotFound) {
		return domain.WrapError(domain.KindNotFound, fmt.Sprintf("Shop %s not found", shopDomain), err)
	}
	return domain.WrapError(domain.KindInternal, "Failed to look up shop", err)
}
