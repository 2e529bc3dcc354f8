package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint returns a stable 64-char hex HMAC-SHA256 of tok under key.
// An empty key falls back to plain SHA-256.
func Fingerprint(tok string, key []byte) string {
	if len(key) == 0 {
		sum := sha256.Sum256([]byte(tok))
		return hex.EncodeToString(sum[:])
	}
	m := hmac.New(sha256.New, key)
	_, _ = m.Write([]byte(tok))
	return hex.EncodeToString(m.Sum(nil))
}
