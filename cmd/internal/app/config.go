package app

import "time"

// Config contains the server runtime configuration loaded from environment variables.
// Auth, session and password settings are loaded by their own packages.
type Config struct {
	HTTPAddr  string
	LogLevel  string
	LogFormat string

	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
	MaxHeaderBytes    int

	// Empty DatabaseURL selects the in-memory credential store.
	DatabaseURL string
	DBSchema    string
	DBMaxConns  int32
	DBMinConns  int32

	// Empty RedisURL keeps the revocation denylist in process memory.
	RedisURL string

	// If true, /readyz returns 503 unless the database is configured and reachable.
	ReadinessRequireDB bool

	// If true, STYLEHUB_SECRET_KEY must pass ValidateSecurityConfig.
	RequireStrongSecret bool

	// Browser origins allowed to call the API with credentials.
	// Entries may end in ":*" to allow any port.
	CORSAllowedOrigins   []string
	CORSAllowCredentials bool
	CORSMaxAgeSeconds    int

	MetricsEnabled bool
}

// LoadConfig loads Config from environment variables with defaults.
func LoadConfig() Config {
	return Config{
		HTTPAddr:  EnvString("STYLEHUB_HTTP_ADDR", "0.0.0.0:8080"),
		LogLevel:  EnvString("STYLEHUB_LOG_LEVEL", "info"),
		LogFormat: EnvString("STYLEHUB_LOG_FORMAT", "json"),

		ReadHeaderTimeout: EnvDuration("STYLEHUB_HTTP_READ_HEADER_TIMEOUT", 5*time.Second),
		ReadTimeout:       EnvDuration("STYLEHUB_HTTP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:      EnvDuration("STYLEHUB_HTTP_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:       EnvDuration("STYLEHUB_HTTP_IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout:   EnvDuration("STYLEHUB_HTTP_SHUTDOWN_TIMEOUT", 10*time.Second),

		MaxHeaderBytes: EnvInt("STYLEHUB_HTTP_MAX_HEADER_BYTES", 1<<20),

		DatabaseURL: EnvString("STYLEHUB_DATABASE_URL", ""),
		DBSchema:    EnvString("STYLEHUB_DB_SCHEMA", "public"),
		DBMaxConns:  EnvInt32("STYLEHUB_DB_MAX_CONNS", 10),
		DBMinConns:  EnvInt32("STYLEHUB_DB_MIN_CONNS", 0),

		RedisURL: EnvString("STYLEHUB_REDIS_URL", ""),

		ReadinessRequireDB:  EnvBool("STYLEHUB_READINESS_REQUIRE_DB", false),
		RequireStrongSecret: EnvBool("STYLEHUB_REQUIRE_STRONG_SECRET", false),

		CORSAllowedOrigins:   EnvList("STYLEHUB_CORS_ALLOWED_ORIGINS"),
		CORSAllowCredentials: EnvBool("STYLEHUB_CORS_ALLOW_CREDENTIALS", true),
		CORSMaxAgeSeconds:    EnvInt("STYLEHUB_CORS_MAX_AGE_SECONDS", 600),

		MetricsEnabled: EnvBool("STYLEHUB_METRICS_ENABLED", true),
	}
}
