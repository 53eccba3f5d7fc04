// Package crypto provides HMAC request signing for the CEX REST APIs and
// encryption-at-rest for stored exchange credentials. Signing happens
// server-side only, so API secrets never travel the client network path.
package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"
)

// HMACAuth holds one exchange API credential pair.
type HMACAuth struct {
	Key    string // API key
	Secret string // API secret
}

// SignQuery returns the hex HMAC-SHA256 signature over a raw query
// string, the scheme Binance uses for signed endpoints. The caller is
// expected to have already appended the timestamp parameter.
func (h *HMACAuth) SignQuery(query string) string {
	return hmacSHA256Hex([]byte(h.Secret), query)
}

// CoinbaseHeaders returns the CB-ACCESS-* headers for a Coinbase
// Advanced Trade request. The signature is hex
// HMAC-SHA256(secret, timestamp+method+path+body).
func (h *HMACAuth) CoinbaseHeaders(method, path, body string) map[string]string {
	return h.CoinbaseHeadersAt(method, path, body, time.Now().Unix())
}

// CoinbaseHeadersAt is like CoinbaseHeaders but lets the caller supply
// the Unix timestamp (useful for deterministic testing).
func (h *HMACAuth) CoinbaseHeadersAt(method, path, body string, unixTS int64) map[string]string {
	ts := strconv.FormatInt(unixTS, 10)
	sig := hmacSHA256Hex([]byte(h.Secret), ts+method+path+body)

	return map[string]string{
		"CB-ACCESS-KEY":       h.Key,
		"CB-ACCESS-SIGN":      sig,
		"CB-ACCESS-TIMESTAMP": ts,
	}
}

// String returns a redacted representation suitable for logging.
func (h *HMACAuth) String() string {
	redact := func(s string) string {
		if len(s) <= 4 {
			return "****"
		}
		return s[:4] + "****"
	}
	return fmt.Sprintf("HMACAuth{key=%s, secret=%s}", redact(h.Key), redact(h.Secret))
}

// hmacSHA256Hex computes HMAC-SHA256 of message using key and returns the
// result hex-encoded.
func hmacSHA256Hex(key []byte, message string) string {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(message))
	return hex.EncodeToString(mac.Sum(nil))
}
