package api

import (
	"net/http"
	"strconv"

	"age-checker-shopify-layer/internal/application"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// CustomerHandler answers storefront age checks
type CustomerHandler struct {
	service       *application.AgeService
	verifications *prometheus.CounterVec
	logger        zerolog.Logger
}

// NewCustomerHandler creates the storefront handler. verifications may be nil.
func NewCustomerHandler(service *application.AgeService, verifications *prometheus.CounterVec, logger zerolog.Logger) *CustomerHandler {
	return &CustomerHandler{service: service, verifications: verifications, logger: logger}
}

// AgeVerifier godoc
// @Summary Check a customer's age against the shop's limit
// @Param shopDomain query string true "Shop domain"
// @Param userAge query string true "Age in years or a birth date (YYYY-MM-DD)"
// @Success 200 {object} domain.AgeVerification
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /customers/ageVerifier [get]
func (h *CustomerHandler) AgeVerifier(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	result, err := h.service.VerifyAge(r.Context(), query.Get("shopDomain"), query.Get("userAge"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if h.verifications != nil {
		h.verifications.WithLabelValues(strconv.FormatBool(result.IsVerified)).Inc()
	}
	writeJSON(w, http.StatusOK, result)
}
