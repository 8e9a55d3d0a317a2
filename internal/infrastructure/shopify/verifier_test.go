package shopify

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedQuery(v *CallbackVerifier) url.Values {
	q := url.Values{}
	q.Set("shop", "shop1.myshopify.com")
	q.Set("code", "0907a61c0c8d55e99db179b68161bc00")
	q.Set("state", "0123456789abcdef")
	q.Set("timestamp", "1337178173")
	q.Set("hmac", v.Sign(q))
	return q
}

func TestCanonicalMessage(t *testing.T) {
	q := url.Values{}
	q.Set("timestamp", "1337178173")
	q.Set("shop", "shop1.myshopify.com")
	q.Set("code", "abc")
	q.Set("hmac", "ignored")
	q.Set("signature", "ignored")

	assert.Equal(t, "code=abc&shop=shop1.myshopify.com&timestamp=1337178173", CanonicalMessage(q))
}

func TestVerifyAcceptsValidSignature(t *testing.T) {
	v := NewCallbackVerifier("hush")
	q := signedQuery(v)

	assert.NoError(t, v.Verify(q))

	// signature is excluded from the signed message
	q.Set("signature", "legacy")
	assert.NoError(t, v.Verify(q))
}

func TestVerifyRejects(t *testing.T) {
	v := NewCallbackVerifier("hush")

	t.Run("wrong secret", func(t *testing.T) {
		q := signedQuery(NewCallbackVerifier("other"))
		assert.ErrorIs(t, v.Verify(q), errHMACMismatch)
	})

	t.Run("missing hmac", func(t *testing.T) {
		q := signedQuery(v)
		q.Del("hmac")
		assert.ErrorIs(t, v.Verify(q), errMissingHMAC)
	})

	t.Run("malformed hex", func(t *testing.T) {
		q := signedQuery(v)
		q.Set("hmac", "zz-not-hex")
		assert.ErrorIs(t, v.Verify(q), errMalformedHMAC)
	})

	t.Run("truncated hmac", func(t *testing.T) {
		q := signedQuery(v)
		q.Set("hmac", q.Get("hmac")[:32])
		assert.ErrorIs(t, v.Verify(q), errHMACMismatch)
	})

	t.Run("added parameter", func(t *testing.T) {
		q := signedQuery(v)
		q.Set("extra", "1")
		assert.Error(t, v.Verify(q))
	})
}

func TestVerifyRejectsEverySingleBitFlip(t *testing.T) {
	v := NewCallbackVerifier("hush")
	q := signedQuery(v)
	require.NoError(t, v.Verify(q))

	t.Run("message bits", func(t *testing.T) {
		code := []byte(q.Get("code"))
		for i := range code {
			for bit := 0; bit < 8; bit++ {
				mutated := make([]byte, len(code))
				copy(mutated, code)
				mutated[i] ^= 1 << bit

				mq := url.Values{}
				for k, vals := range q {
					mq[k] = append([]string(nil), vals...)
				}
				mq.Set("code", string(mutated))
				assert.Error(t, v.Verify(mq), "byte %d bit %d", i, bit)
			}
		}
	})

	t.Run("hmac bits", func(t *testing.T) {
		sig := []byte(q.Get("hmac"))
		for i := range sig {
			for bit := 0; bit < 8; bit++ {
				mutated := make([]byte, len(sig))
				copy(mutated, sig)
				mutated[i] ^= 1 << bit

				mq := url.Values{}
				for k, vals := range q {
					mq[k] = append([]string(nil), vals...)
				}
				mq.Set("hmac", string(mutated))
				assert.Error(t, v.Verify(mq), "byte %d bit %d", i, bit)
			}
		}
	})
}
