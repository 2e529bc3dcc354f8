package authapi

import (
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config controls auth API transport behavior.
type Config struct {
	TrustProxy   bool
	MaxBodyBytes int64

	RefreshCookieName string
	CookiePath        string
	CookieDomain      string
	CookieSecure      bool
	CookieSameSite    http.SameSite

	// Failed logins allowed per client IP within LoginIPWindow before
	// /auth/token answers 429. Zero disables the throttle.
	LoginIPMax    int
	LoginIPWindow time.Duration
}

// DefaultConfig returns the production cookie policy: HttpOnly refresh cookie
// scoped to /auth, Secure, SameSite=Strict.
func DefaultConfig() Config {
	return Config{
		MaxBodyBytes:      64 << 10,
		RefreshCookieName: "refresh_token",
		CookiePath:        "/auth",
		CookieSecure:      true,
		CookieSameSite:    http.SameSiteStrictMode,
		LoginIPMax:        20,
		LoginIPWindow:     15 * time.Minute,
	}
}

// LoadConfigFromEnv loads auth config from environment variables with safe defaults.
func LoadConfigFromEnv() Config {
	def := DefaultConfig()
	cfg := Config{
		TrustProxy:        envBool("STYLEHUB_AUTH_TRUST_PROXY", false),
		MaxBodyBytes:      envInt64("STYLEHUB_AUTH_MAX_BODY_BYTES", def.MaxBodyBytes),
		RefreshCookieName: envString("STYLEHUB_AUTH_COOKIE_NAME", def.RefreshCookieName),
		CookiePath:        envString("STYLEHUB_AUTH_COOKIE_PATH", def.CookiePath),
		CookieDomain:      envString("STYLEHUB_AUTH_COOKIE_DOMAIN", ""),
		CookieSecure:      envBool("STYLEHUB_AUTH_COOKIE_SECURE", def.CookieSecure),
		CookieSameSite:    parseSameSite(os.Getenv("STYLEHUB_AUTH_COOKIE_SAMESITE")),
		LoginIPMax:        envInt("STYLEHUB_AUTH_LOGIN_IP_MAX", def.LoginIPMax),
		LoginIPWindow:     envDuration("STYLEHUB_AUTH_LOGIN_IP_WINDOW", def.LoginIPWindow),
	}

	if !strings.HasPrefix(cfg.CookiePath, "/") {
		cfg.CookiePath = def.CookiePath
	}
	return cfg
}

func parseSameSite(v string) http.SameSite {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "lax":
		return http.SameSiteLaxMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteStrictMode
	}
}

func envString(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func envBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func envInt64(key string, def int64) int64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

// envInt accepts zero so the throttle can be switched off.
func envInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}

func envDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
