package api

import (
	"html/template"
	"net/http"
	"time"

	"age-checker-shopify-layer/internal/application"
	"age-checker-shopify-layer/internal/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

const (
	stateCookieName   = "state"
	stateCookieMaxAge = 10 * time.Minute
)

var confirmationPage = template.Must(template.New("installed").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>Age Checker installed</title></head>
<body>
<h1>Age Checker is installed</h1>
<p>Your shop {{.ShopName}} ({{.Shop}}) is now connected. You can set its minimum age from the app settings.</p>
</body>
</html>
`))

// OAuthHandler serves the install redirect and the OAuth callback
type OAuthHandler struct {
	service       *application.OAuthService
	secureCookies bool
	installs      *prometheus.CounterVec
	logger        zerolog.Logger
}

// NewOAuthHandler creates the OAuth HTTP handler. installs may be nil.
func NewOAuthHandler(service *application.OAuthService, secureCookies bool, installs *prometheus.CounterVec, logger zerolog.Logger) *OAuthHandler {
	return &OAuthHandler{
		service:       service,
		secureCookies: secureCookies,
		installs:      installs,
		logger:        logger,
	}
}

// Install godoc
// @Summary Start the app installation
// @Param shop query string true "Shop domain, e.g. my-shop.myshopify.com"
// @Success 302
// @Failure 400 {object} ErrorResponse
// @Router /shopify [get]
func (h *OAuthHandler) Install(w http.ResponseWriter, r *http.Request) {
	req, err := h.service.BeginInstall(r.URL.Query().Get("shop"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	http.SetCookie(w, h.stateCookie(req.State, int(stateCookieMaxAge.Seconds())))
	http.Redirect(w, r, req.AuthURL, http.StatusFound)
}

// Callback godoc
// @Summary Complete the app installation
// @Param shop query string true "Shop domain"
// @Param hmac query string true "Request signature"
// @Param code query string true "Authorization code"
// @Param state query string true "Nonce issued by /shopify"
// @Success 200 {string} string "HTML confirmation"
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /shopify/callback [get]
func (h *OAuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	in := domain.CallbackInput{
		Shop:  query.Get("shop"),
		HMAC:  query.Get("hmac"),
		Code:  query.Get("code"),
		State: query.Get("state"),
		Query: query,
	}
	if cookie, err := r.Cookie(stateCookieName); err == nil {
		in.StateCookie = cookie.Value
	}

	result, err := h.service.CompleteInstall(r.Context(), in)
	if err != nil {
		h.countInstall(string(domain.KindOf(err)))
		writeError(w, h.logger, err)
		return
	}
	h.countInstall("success")

	// The nonce is single use
	http.SetCookie(w, h.stateCookie("", -1))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if err := confirmationPage.Execute(w, result); err != nil {
		h.logger.Error().Err(err).Str("shop", result.Shop).Msg("Failed to render confirmation page")
	}
}

func (h *OAuthHandler) stateCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     stateCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	}
}

func (h *OAuthHandler) countInstall(result string) {
	if h.installs != nil {
		h.installs.WithLabelValues(result).Inc()
	}
}
