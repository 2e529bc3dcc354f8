package app

import (
	"errors"
	"fmt"

	"stylehub/cmd/internal/auth/session"
)

const (
	minSecretBytes    = 32
	minSecretDistinct = 8
)

var (
	ErrSecretTooShort   = errors.New("security policy: STYLEHUB_SECRET_KEY is too short")
	ErrSecretLowEntropy = errors.New("security policy: STYLEHUB_SECRET_KEY has too few distinct bytes")
)

// ValidateSecurityConfig enforces the signing-secret policy at startup.
//
// With RequireStrongSecret off any non-empty secret is accepted (session config
// already rejects an empty one). With it on the secret must be at least 32 bytes
// and must not be a short pattern repeated.
func ValidateSecurityConfig(cfg Config, sess session.Config) error {
	if !cfg.RequireStrongSecret {
		return nil
	}

	// Bytes, not runes: the key is used as raw HMAC key material.
	if len(sess.SecretKey) < minSecretBytes {
		return fmt.Errorf("%w (got %d bytes, min %d)", ErrSecretTooShort, len(sess.SecretKey), minSecretBytes)
	}

	seen := make(map[byte]struct{}, minSecretDistinct)
	for _, b := range sess.SecretKey {
		seen[b] = struct{}{}
		if len(seen) >= minSecretDistinct {
			return nil
		}
	}
	return ErrSecretLowEntropy
}
