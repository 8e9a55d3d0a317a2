package shopify

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"

	"age-checker-shopify-layer/internal/ports"
)

var (
	errMissingHMAC   = errors.New("missing hmac parameter")
	errMalformedHMAC = errors.New("hmac is not valid hex")
	errHMACMismatch  = errors.New("hmac does not match")
)

// CallbackVerifier checks the hmac query parameter Shopify signs OAuth redirects with
type CallbackVerifier struct {
	secret []byte
}

// NewCallbackVerifier creates a verifier for the app's API secret
func NewCallbackVerifier(apiSecret string) *CallbackVerifier {
	return &CallbackVerifier{secret: []byte(apiSecret)}
}

var _ ports.CallbackVerifier = (*CallbackVerifier)(nil)

// CanonicalMessage returns the string Shopify signs: every parameter except
// hmac and signature, sorted by key and form encoded.
func CanonicalMessage(query url.Values) string {
	params := url.Values{}
	for key, values := range query {
		if key == "hmac" || key == "signature" {
			continue
		}
		params[key] = values
	}
	return params.Encode()
}

// Sign computes the hex HMAC-SHA256 of the canonical message
func (v *CallbackVerifier) Sign(query url.Values) string {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(CanonicalMessage(query)))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify compares the provided hmac with the expected hex digest in constant time.
// The comparison is on the lowercase hex text, so a re-cased digest is a mismatch.
func (v *CallbackVerifier) Verify(query url.Values) error {
	provided := query.Get("hmac")
	if provided == "" {
		return errMissingHMAC
	}
	if _, err := hex.DecodeString(provided); err != nil {
		return fmt.Errorf("%w: %v", errMalformedHMAC, err)
	}

	if !hmac.Equal([]byte(v.Sign(query)), []byte(provided)) {
		return errHMACMismatch
	}
	return nil
}
