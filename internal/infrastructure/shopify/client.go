package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"age-checker-shopify-layer/internal/domain"
	"age-checker-shopify-layer/internal/ports"

	goshopify "github.com/bold-commerce/go-shopify/v4"
	"github.com/rs/zerolog"
)

type client struct {
	apiKey     string
	apiSecret  string
	scopes     []string
	apiVersion string
	app        goshopify.App
	httpClient *http.Client
	logger     zerolog.Logger
}

// Options configures the Shopify client adapter
type Options struct {
	APIKey     string
	APISecret  string
	Scopes     []string
	APIVersion string
	HTTPClient *http.Client
	Logger     zerolog.Logger
}

// NewClient creates a new Shopify client adapter
func NewClient(opts Options) ports.ShopifyClient {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &client{
		apiKey:     opts.APIKey,
		apiSecret:  opts.APISecret,
		scopes:     opts.Scopes,
		apiVersion: opts.APIVersion,
		app: goshopify.App{
			ApiKey:    opts.APIKey,
			ApiSecret: opts.APISecret,
			Scope:     strings.Join(opts.Scopes, ","),
		},
		httpClient: httpClient,
		logger:     opts.Logger,
	}
}

// createClient is a helper to create a goshopify client
func (c *client) createClient(shopDomain string, accessToken string) (*goshopify.Client, error) {
	opts := []goshopify.Option{goshopify.WithHTTPClient(c.httpClient)}
	if c.apiVersion != "" {
		opts = append(opts, goshopify.WithVersion(c.apiVersion))
	}
	client, err := goshopify.NewClient(c.app, shopDomain, accessToken, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return client, nil
}

// Authentication methods

func (c *client) GenerateAuthURL(shop string, redirectURI string, state string) (string, error) {
	authURL, err := url.Parse(fmt.Sprintf("https://%s/admin/oauth/authorize", shop))
	if err != nil {
		return "", fmt.Errorf("invalid shop domain %q: %w", shop, err)
	}

	q := authURL.Query()
	q.Set("client_id", c.apiKey)
	q.Set("scope", strings.Join(c.scopes, ","))
	q.Set("state", state)
	q.Set("redirect_uri", redirectURI)
	authURL.RawQuery = q.Encode()

	c.logger.Debug().
		Str("shop", shop).
		Strs("scopes", c.scopes).
		Msg("Generated OAuth authorization URL")

	return authURL.String(), nil
}

type accessTokenRequest struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	Code         string `json:"code"`
}

type accessTokenResponse struct {
	AccessToken string `json:"access_token"`
	Scope       string `json:"scope"`
}

type oauthErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// ExchangeToken trades the one-time authorization code for a permanent access token.
// Failures come back as domain upstream errors carrying Shopify's status and description.
func (c *client) ExchangeToken(ctx context.Context, shop string, code string) (string, error) {
	tokenURL := fmt.Sprintf("https://%s/admin/oauth/access_token", shop)

	payload, err := json.Marshal(accessTokenRequest{
		ClientID:     c.apiKey,
		ClientSecret: c.apiSecret,
		Code:         code,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode token request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", domain.NewUpstreamError(http.StatusBadGateway, "Failed to reach Shopify", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", domain.NewUpstreamError(http.StatusBadGateway, "Failed to read Shopify response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		description := describeOAuthError(body, resp.Status)
		return "", domain.NewUpstreamError(resp.StatusCode, description,
			fmt.Errorf("token exchange returned status %d", resp.StatusCode))
	}

	var tokenResponse accessTokenResponse
	if err := json.Unmarshal(body, &tokenResponse); err != nil {
		return "", domain.NewUpstreamError(http.StatusBadGateway, "Invalid token response from Shopify", err)
	}
	if tokenResponse.AccessToken == "" {
		return "", domain.NewUpstreamError(http.StatusBadGateway, "Shopify returned no access token", nil)
	}

	c.logger.Info().
		Str("shop", shop).
		Str("granted_scopes", tokenResponse.Scope).
		Msg("Exchanged OAuth code for access token")

	return tokenResponse.AccessToken, nil
}

func describeOAuthError(body []byte, status string) string {
	var oauthErr oauthErrorResponse
	if err := json.Unmarshal(body, &oauthErr); err == nil {
		if oauthErr.ErrorDescription != "" {
			return oauthErr.ErrorDescription
		}
		if oauthErr.Error != "" {
			return oauthErr.Error
		}
	}
	if text := strings.TrimSpace(string(body)); text != "" {
		return text
	}
	return status
}

// Shop API

func (c *client) GetShop(ctx context.Context, shopDomain string, accessToken string) (*goshopify.Shop, error) {
	client, err := c.createClient(shopDomain, accessToken)
	if err != nil {
		return nil, err
	}
	shop, err := client.Shop.Get(ctx, nil)
	if err != nil {
		return nil, upstreamError(err)
	}
	return shop, nil
}

// upstreamError maps go-shopify response errors to domain upstream errors
func upstreamError(err error) error {
	var statusErr interface{ GetStatus() int }
	if errors.As(err, &statusErr) && statusErr.GetStatus() != 0 {
		return domain.NewUpstreamError(statusErr.GetStatus(), err.Error(), err)
	}
	return domain.NewUpstreamError(http.StatusBadGateway, "Failed to fetch shop information", err)
}
