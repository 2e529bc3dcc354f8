package session

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config defines all runtime configuration for the session subsystem.
//
// It is built once at startup and passed by value; nothing in this package
// reads the environment after construction.
type Config struct {
	// SecretKey signs and verifies every token (HS256). Must be non-empty.
	SecretKey []byte

	// Issuer is the value set in the "iss" claim.
	Issuer string

	// AccessTTL and RefreshTTL are the lifetimes of the two token classes.
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	// ClockSkew is the leeway applied to exp/iat checks during verification.
	ClockSkew time.Duration

	// RevokeOnLogout enables the refresh-token denylist. Off by default:
	// logout is then purely client-side and tokens stay valid until exp.
	RevokeOnLogout bool
}

// DefaultConfig returns the default lifetimes. SecretKey is left empty on purpose.
func DefaultConfig() Config {
	return Config{
		Issuer:     "stylehub",
		AccessTTL:  30 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
	}
}

// Validate reports ErrConfig for unusable configurations.
func (c Config) Validate() error {
	if len(c.SecretKey) == 0 {
		return ErrConfig
	}
	if c.AccessTTL <= 0 || c.RefreshTTL <= 0 || c.ClockSkew < 0 {
		return ErrConfig
	}
	if strings.TrimSpace(c.Issuer) == "" {
		return ErrConfig
	}
	return nil
}

// LoadConfigFromEnv loads session configuration from environment variables.
//
// Required:
//   - STYLEHUB_SECRET_KEY
//
// Optional (durations must be valid Go duration strings):
//   - STYLEHUB_AUTH_ISSUER
//   - STYLEHUB_ACCESS_TTL
//   - STYLEHUB_REFRESH_TTL
//   - STYLEHUB_AUTH_CLOCK_SKEW
//   - STYLEHUB_AUTH_REVOKE_ON_LOGOUT
//
// Returns ErrConfig if configuration is invalid.
func LoadConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v := strings.TrimSpace(os.Getenv("STYLEHUB_AUTH_ISSUER")); v != "" {
		cfg.Issuer = v
	}

	if v := os.Getenv("STYLEHUB_ACCESS_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, ErrConfig
		}
		cfg.AccessTTL = d
	}

	if v := os.Getenv("STYLEHUB_REFRESH_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, ErrConfig
		}
		cfg.RefreshTTL = d
	}

	if v := os.Getenv("STYLEHUB_AUTH_CLOCK_SKEW"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			return Config{}, ErrConfig
		}
		cfg.ClockSkew = d
	}

	if v := os.Getenv("STYLEHUB_AUTH_REVOKE_ON_LOGOUT"); v != "" {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return Config{}, ErrConfig
		}
		cfg.RevokeOnLogout = b
	}

	secret := os.Getenv("STYLEHUB_SECRET_KEY")
	if strings.TrimSpace(secret) == "" {
		return Config{}, ErrConfig
	}
	cfg.SecretKey = []byte(secret)

	// A refresh token that dies before its access token makes refresh pointless.
	if cfg.RefreshTTL < cfg.AccessTTL {
		return Config{}, ErrConfig
	}

	return cfg, nil
}
