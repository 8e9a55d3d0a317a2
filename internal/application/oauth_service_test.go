package application

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"testing"

	"age-checker-shopify-layer/internal/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testShop = "shop1.myshopify.com"

type oauthFixture struct {
	service  *OAuthService
	client   *fakeShopifyClient
	verifier *fakeVerifier
	shops    *memoryShopRepository
	failures prometheus.Counter
}

func newOAuthFixture() *oauthFixture {
	f := &oauthFixture{
		client:   &fakeShopifyClient{token: "shpat_1"},
		verifier: &fakeVerifier{},
		shops:    newMemoryShopRepository(),
		failures: prometheus.NewCounter(prometheus.CounterOpts{Name: "failures"}),
	}
	f.service = NewOAuthService(f.client, f.verifier, f.shops, "https://app.example.com/shopify/callback", f.failures, zerolog.Nop())
	f.service.newNonce = func() (string, error) { return "nonce-1", nil }
	return f
}

func callbackInput(state, cookie string) domain.CallbackInput {
	q := url.Values{}
	q.Set("shop", testShop)
	q.Set("hmac", "abcd")
	q.Set("code", "code-1")
	q.Set("state", state)
	return domain.CallbackInput{
		Shop:        testShop,
		HMAC:        "abcd",
		Code:        "code-1",
		State:       state,
		StateCookie: cookie,
		Query:       q,
	}
}

func TestBeginInstall(t *testing.T) {
	f := newOAuthFixture()

	req, err := f.service.BeginInstall(" Shop1.MyShopify.com ")
	require.NoError(t, err)
	assert.Equal(t, testShop, req.Shop)
	assert.Equal(t, "nonce-1", req.State)

	parsed, err := url.Parse(req.AuthURL)
	require.NoError(t, err)
	assert.Equal(t, testShop, parsed.Host)
	assert.Equal(t, "nonce-1", parsed.Query().Get("state"))
	assert.Equal(t, "https://app.example.com/shopify/callback", parsed.Query().Get("redirect_uri"))
}

func TestBeginInstallErrors(t *testing.T) {
	f := newOAuthFixture()

	_, err := f.service.BeginInstall("")
	assert.Equal(t, domain.KindMissingParameter, domain.KindOf(err))
	assert.Contains(t, err.Error(), "Missing shop parameter")

	_, err = f.service.BeginInstall("attacker.example.com")
	assert.Equal(t, domain.KindInvalidParameter, domain.KindOf(err))

	f.service.newNonce = func() (string, error) { return "", errors.New("entropy exhausted") }
	_, err = f.service.BeginInstall(testShop)
	assert.Equal(t, domain.KindInternal, domain.KindOf(err))
}

func TestGenerateNonceIsFresh(t *testing.T) {
	a, err := generateNonce()
	require.NoError(t, err)
	b, err := generateNonce()
	require.NoError(t, err)

	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)
}

func TestCompleteInstallCreatesShop(t *testing.T) {
	f := newOAuthFixture()

	result, err := f.service.CompleteInstall(context.Background(), callbackInput("nonce-1", "nonce-1"))
	require.NoError(t, err)
	assert.Equal(t, testShop, result.Shop)
	assert.Equal(t, "Shop One", result.ShopName)

	shop, err := f.shops.GetByDomain(context.Background(), testShop)
	require.NoError(t, err)
	assert.Equal(t, "shpat_1", shop.AccessToken)
	assert.Equal(t, 0, shop.AgeLimit)
	assert.Equal(t, []string{"shpat_1"}, f.client.fetched)
}

func TestCompleteInstallTwiceUpdatesTokenOnly(t *testing.T) {
	f := newOAuthFixture()
	ctx := context.Background()

	_, err := f.service.CompleteInstall(ctx, callbackInput("nonce-1", "nonce-1"))
	require.NoError(t, err)
	_, err = f.shops.SetAgeLimit(ctx, testShop, 21)
	require.NoError(t, err)

	f.client.token = "shpat_2"
	_, err = f.service.CompleteInstall(ctx, callbackInput("nonce-2", "nonce-2"))
	require.NoError(t, err)

	assert.Equal(t, 1, f.shops.count())
	shop, err := f.shops.GetByDomain(ctx, testShop)
	require.NoError(t, err)
	assert.Equal(t, "shpat_2", shop.AccessToken)
	assert.Equal(t, 21, shop.AgeLimit)
}

func TestCompleteInstallStateCheck(t *testing.T) {
	tests := []struct {
		name   string
		state  string
		cookie string
	}{
		{name: "mismatch", state: "nonce-1", cookie: "nonce-2"},
		{name: "missing cookie", state: "nonce-1", cookie: ""},
		{name: "both empty", state: "", cookie: ""},
		{name: "prefix", state: "nonce", cookie: "nonce-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newOAuthFixture()
			f.verifier.err = errors.New("must not be reached")

			_, err := f.service.CompleteInstall(context.Background(), callbackInput(tt.state, tt.cookie))
			assert.Equal(t, domain.KindStateMismatch, domain.KindOf(err))
			assert.Empty(t, f.client.exchanged)
		})
	}
}

func TestCompleteInstallRequiredParameters(t *testing.T) {
	for _, missing := range []string{"shop", "hmac", "code"} {
		t.Run(missing, func(t *testing.T) {
			f := newOAuthFixture()
			in := callbackInput("nonce-1", "nonce-1")
			switch missing {
			case "shop":
				in.Shop = ""
			case "hmac":
				in.HMAC = ""
			case "code":
				in.Code = ""
			}

			_, err := f.service.CompleteInstall(context.Background(), in)
			assert.Equal(t, domain.KindMissingParameter, domain.KindOf(err))
			assert.Empty(t, f.client.exchanged)
		})
	}
}

func TestCompleteInstallHMACFailure(t *testing.T) {
	f := newOAuthFixture()
	f.verifier.err = errors.New("hmac does not match")

	_, err := f.service.CompleteInstall(context.Background(), callbackInput("nonce-1", "nonce-1"))
	assert.Equal(t, domain.KindHMACInvalid, domain.KindOf(err))
	assert.Contains(t, err.Error(), "HMAC validation failed")
	assert.Empty(t, f.client.exchanged)
	assert.Equal(t, 0, f.shops.count())
}

func TestCompleteInstallExchangeFailure(t *testing.T) {
	f := newOAuthFixture()
	f.client.exchangeErr = domain.NewUpstreamError(http.StatusBadRequest, "The authorization code was not found or was already used", nil)

	_, err := f.service.CompleteInstall(context.Background(), callbackInput("nonce-1", "nonce-1"))
	var upstream *domain.Error
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, http.StatusBadRequest, upstream.Status)
	assert.Equal(t, 0, f.shops.count())
	assert.Empty(t, f.client.fetched)
}

func TestCompleteInstallConfirmationFailure(t *testing.T) {
	f := newOAuthFixture()
	f.client.getShopErr = domain.NewUpstreamError(http.StatusUnauthorized, "Invalid API key or access token", nil)

	_, err := f.service.CompleteInstall(context.Background(), callbackInput("nonce-1", "nonce-1"))
	var upstream *domain.Error
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, http.StatusUnauthorized, upstream.Status)

	// the record write is independent of the confirmation fetch
	assert.Equal(t, 1, f.shops.count())
}

func TestCompleteInstallUnclassifiedConfirmationFailure(t *testing.T) {
	f := newOAuthFixture()
	f.client.getShopErr = errors.New("connection reset")

	_, err := f.service.CompleteInstall(context.Background(), callbackInput("nonce-1", "nonce-1"))
	var upstream *domain.Error
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, http.StatusBadGateway, upstream.Status)
}

func TestCompleteInstallUpsertFailureIsNotSurfaced(t *testing.T) {
	f := newOAuthFixture()
	f.shops.upsertErr = errors.New("mongo unavailable")

	result, err := f.service.CompleteInstall(context.Background(), callbackInput("nonce-1", "nonce-1"))
	require.NoError(t, err)
	assert.Equal(t, testShop, result.Shop)
	assert.Equal(t, 1, f.shops.upserts)
	assert.Equal(t, float64(1), testutil.ToFloat64(f.failures))
}

func TestCompleteInstallUpsertSurvivesCancelledRequest(t *testing.T) {
	f := newOAuthFixture()
	ctx, cancel := context.WithCancel(context.Background())

	_, err := f.service.CompleteInstall(ctx, callbackInput("nonce-1", "nonce-1"))
	require.NoError(t, err)
	cancel()

	assert.Equal(t, 1, f.shops.count())
}
