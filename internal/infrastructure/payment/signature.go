package payment

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
)

// ValidSignature reports whether signature is the hex HMAC-SHA512 digest of
// body under secret. The body must be the raw bytes exactly as received;
// re-serialized JSON will not match. Comparison is constant time.
func ValidSignature(secret string, body []byte, signature string) bool {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
