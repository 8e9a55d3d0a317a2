package api

import (
	"fmt"
	"net/http"

	"age-checker-shopify-layer/internal/application"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// MessageResponse carries a human readable confirmation
type MessageResponse struct {
	Message string `json:"message"`
}

// AgeLimitResponse is the body of getAge
type AgeLimitResponse struct {
	AgeLimit int `json:"ageLimit"`
}

// AgeHandler exposes the per-shop age limit
type AgeHandler struct {
	service *application.AgeService
	logger  zerolog.Logger
}

func NewAgeHandler(service *application.AgeService, logger zerolog.Logger) *AgeHandler {
	return &AgeHandler{service: service, logger: logger}
}

// SetAge godoc
// @Summary Set the minimum customer age for a shop
// @Param shopDomain path string true "Shop domain"
// @Param age query int true "Minimum age"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /shopify/setAge/{shopDomain} [get]
func (h *AgeHandler) SetAge(w http.ResponseWriter, r *http.Request) {
	shop, err := h.service.SetAgeLimit(r.Context(), chi.URLParam(r, "shopDomain"), r.URL.Query().Get("age"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{
		Message: fmt.Sprintf("Successfully updated the age limit to %d.", shop.AgeLimit),
	})
}

// GetAge godoc
// @Summary Read the minimum customer age for a shop
// @Param shopDomain path string true "Shop domain"
// @Success 200 {object} AgeLimitResponse
// @Failure 404 {object} ErrorResponse
// @Router /shopify/getAge/{shopDomain} [get]
func (h *AgeHandler) GetAge(w http.ResponseWriter, r *http.Request) {
	limit, err := h.service.GetAgeLimit(r.Context(), chi.URLParam(r, "shopDomain"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, AgeLimitResponse{AgeLimit: limit})
}
