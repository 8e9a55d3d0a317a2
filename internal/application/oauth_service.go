package application

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"time"

	"age-checker-shopify-layer/internal/domain"
	"age-checker-shopify-layer/internal/ports"

	goshopify "github.com/bold-commerce/go-shopify/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	missingShopMessage   = "Missing shop parameter. Please add ?shop=your-development-shop.myshopify.com to your request"
	invalidShopMessage   = "Invalid shop parameter. Expected a domain like your-development-shop.myshopify.com"
	stateMismatchMessage = "Request origin cannot be verified"
	missingParamsMessage = "Required parameters missing"
	hmacFailedMessage    = "HMAC validation failed"

	defaultUpsertTimeout = 10 * time.Second
)

// OAuthService runs the Shopify app installation handshake
type OAuthService struct {
	client         ports.ShopifyClient
	verifier       ports.CallbackVerifier
	shops          ports.ShopRepository
	callbackURL    string
	upsertTimeout  time.Duration
	upsertFailures prometheus.Counter
	newNonce       func() (string, error)
	logger         zerolog.Logger
}

// NewOAuthService creates a new OAuth application service.
// upsertFailures may be nil.
func NewOAuthService(
	client ports.ShopifyClient,
	verifier ports.CallbackVerifier,
	shops ports.ShopRepository,
	callbackURL string,
	upsertFailures prometheus.Counter,
	logger zerolog.Logger,
) *OAuthService {
	return &OAuthService{
		client:         client,
		verifier:       verifier,
		shops:          shops,
		callbackURL:    callbackURL,
		upsertTimeout:  defaultUpsertTimeout,
		upsertFailures: upsertFailures,
		newNonce:       generateNonce,
		logger:         logger,
	}
}

// generateNonce returns 16 random bytes, hex encoded
func generateNonce() (string, error) {
	stateBytes := make([]byte, 16)
	if _, err := rand.Read(stateBytes); err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	return hex.EncodeToString(stateBytes), nil
}

// BeginInstall validates the shop and builds the authorization redirect with a fresh nonce
func (s *OAuthService) BeginInstall(shop string) (*domain.InstallRequest, error) {
	if shop == "" {
		return nil, domain.NewError(domain.KindMissingParameter, missingShopMessage)
	}
	shop = domain.NormalizeShopDomain(shop)
	if !domain.IsValidShopDomain(shop) {
		return nil, domain.NewError(domain.KindInvalidParameter, invalidShopMessage)
	}

	state, err := s.newNonce()
	if err != nil {
		return nil, domain.WrapError(domain.KindInternal, "Failed to start installation", err)
	}

	authURL, err := s.client.GenerateAuthURL(shop, s.callbackURL, state)
	if err != nil {
		return nil, domain.WrapError(domain.KindInternal, "Failed to start installation", err)
	}

	s.logger.Info().Str("shop", shop).Msg("Redirecting shop to Shopify authorization")

	return &domain.InstallRequest{
		Shop:    shop,
		State:   state,
		AuthURL: authURL,
	}, nil
}

// CompleteInstall validates the callback, exchanges the code and confirms the token.
// The shop record write runs alongside the confirmation fetch; its failure is only logged.
func (s *OAuthService) CompleteInstall(ctx context.Context, in domain.CallbackInput) (*domain.InstallResult, error) {
	if in.State == "" || subtle.ConstantTimeCompare([]byte(in.State), []byte(in.StateCookie)) != 1 {
		return nil, domain.NewError(domain.KindStateMismatch, stateMismatchMessage)
	}

	if in.Shop == "" || in.HMAC == "" || in.Code == "" {
		return nil, domain.NewError(domain.KindMissingParameter, missingParamsMessage)
	}
	shop := domain.NormalizeShopDomain(in.Shop)
	if !domain.IsValidShopDomain(shop) {
		return nil, domain.NewError(domain.KindInvalidParameter, invalidShopMessage)
	}

	if err := s.verifier.Verify(in.Query); err != nil {
		s.logger.Warn().Err(err).Str("shop", shop).Msg("OAuth callback HMAC validation failed")
		return nil, domain.WrapError(domain.KindHMACInvalid, hmacFailedMessage, err)
	}

	accessToken, err := s.client.ExchangeToken(ctx, shop, in.Code)
	if err != nil {
		s.logger.Error().Err(err).Str("shop", shop).Msg("Failed to exchange token")
		return nil, asUpstream(err)
	}

	var (
		g        errgroup.Group
		shopInfo *goshopify.Shop
	)
	g.Go(func() error {
		s.saveShop(ctx, shop, accessToken)
		return nil
	})
	g.Go(func() error {
		var err error
		shopInfo, err = s.client.GetShop(ctx, shop, accessToken)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error().Err(err).Str("shop", shop).Msg("Failed to confirm access token")
		return nil, asUpstream(err)
	}

	result := &domain.InstallResult{Shop: shop, ShopName: shop}
	if shopInfo != nil && shopInfo.Name != "" {
		result.ShopName = shopInfo.Name
	}

	s.logger.Info().Str("shop", shop).Msg("Shop installation completed")
	return result, nil
}

// saveShop upserts the shop record. It outlives a cancelled request so a client
// disconnect does not drop a token Shopify already issued.
func (s *OAuthService) saveShop(ctx context.Context, shop string, accessToken string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.upsertTimeout)
	defer cancel()

	saved, err := s.shops.UpsertAccessToken(ctx, shop, accessToken)
	if err != nil {
		if s.upsertFailures != nil {
			s.upsertFailures.Inc()
		}
		s.logger.Error().Err(err).Str("shop", shop).Msg("Failed to save shop")
		return
	}

	if saved.CreatedAt.Equal(saved.UpdatedAt) {
		s.logger.Info().Str("shop", shop).Msg("Shop created")
	} else {
		s.logger.Info().Str("shop", shop).Msg("Shop found, token updated")
	}
}

// asUpstream keeps classified errors and treats anything else as a bad gateway
func asUpstream(err error) error {
	var classified *domain.Error
	if errors.As(err, &classified) {
		return classified
	}
	return domain.NewUpstreamError(http.StatusBadGateway, "Shopify request failed", err)
}
