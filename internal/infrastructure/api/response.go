package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"age-checker-shopify-layer/internal/domain"

	"github.com/rs/zerolog"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// statusFor maps an error kind to its HTTP status
func statusFor(e *domain.Error) int {
	switch e.Kind {
	case domain.KindMissingParameter, domain.KindInvalidParameter, domain.KindHMACInvalid:
		return http.StatusBadRequest
	case domain.KindStateMismatch:
		return http.StatusForbidden
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindUpstream:
		if e.Status >= http.StatusBadRequest && e.Status <= 599 {
			return e.Status
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err as a JSON error body. Unclassified errors become a 500
// without leaking their text.
func writeError(w http.ResponseWriter, logger zerolog.Logger, err error) {
	var classified *domain.Error
	if !errors.As(err, &classified) {
		if errors.Is(err, domain.ErrShopNotFound) {
			classified = domain.WrapError(domain.KindNotFound, "Shop not found", err)
		} else {
			classified = domain.WrapError(domain.KindInternal, "Internal server error", err)
		}
	}

	status := statusFor(classified)
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Int("status", status).Msg("Request failed")
	}

	writeJSON(w, status, ErrorResponse{
		Error:   string(classified.Kind),
		Message: classified.Message,
	})
}
