package app

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, k := range []string{
		"STYLEHUB_HTTP_ADDR", "STYLEHUB_LOG_LEVEL", "STYLEHUB_LOG_FORMAT",
		"STYLEHUB_DATABASE_URL", "STYLEHUB_DB_SCHEMA", "STYLEHUB_DB_MAX_CONNS",
		"STYLEHUB_REDIS_URL", "STYLEHUB_CORS_ALLOWED_ORIGINS", "STYLEHUB_METRICS_ENABLED",
		"STYLEHUB_HTTP_READ_TIMEOUT", "STYLEHUB_REQUIRE_STRONG_SECRET",
	} {
		t.Setenv(k, "")
	}

	cfg := LoadConfig()
	if cfg.HTTPAddr != "0.0.0.0:8080" || cfg.LogLevel != "info" || cfg.LogFormat != "json" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.DatabaseURL != "" || cfg.DBSchema != "public" || cfg.DBMaxConns != 10 {
		t.Fatalf("unexpected db defaults: %+v", cfg)
	}
	if cfg.ReadTimeout != 15*time.Second || !cfg.MetricsEnabled || cfg.RequireStrongSecret {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.CORSAllowedOrigins != nil {
		t.Fatalf("cors origins=%v want nil", cfg.CORSAllowedOrigins)
	}
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("STYLEHUB_HTTP_ADDR", "127.0.0.1:9000")
	t.Setenv("STYLEHUB_LOG_FORMAT", "text")
	t.Setenv("STYLEHUB_DATABASE_URL", "postgres://u:p@db/stylehub")
	t.Setenv("STYLEHUB_DB_MIN_CONNS", "2")
	t.Setenv("STYLEHUB_REDIS_URL", "redis://cache:6379/1")
	t.Setenv("STYLEHUB_HTTP_READ_TIMEOUT", "3s")
	t.Setenv("STYLEHUB_CORS_ALLOWED_ORIGINS", " https://a.example.com , ,http://localhost:* ")
	t.Setenv("STYLEHUB_REQUIRE_STRONG_SECRET", "true")
	t.Setenv("STYLEHUB_METRICS_ENABLED", "false")

	cfg := LoadConfig()
	if cfg.HTTPAddr != "127.0.0.1:9000" || cfg.LogFormat != "text" {
		t.Fatalf("unexpected: %+v", cfg)
	}
	if cfg.DatabaseURL != "postgres://u:p@db/stylehub" || cfg.DBMinConns != 2 || cfg.RedisURL != "redis://cache:6379/1" {
		t.Fatalf("unexpected storage config: %+v", cfg)
	}
	if cfg.ReadTimeout != 3*time.Second || !cfg.RequireStrongSecret || cfg.MetricsEnabled {
		t.Fatalf("unexpected: %+v", cfg)
	}
	want := []string{"https://a.example.com", "http://localhost:*"}
	if !reflect.DeepEqual(cfg.CORSAllowedOrigins, want) {
		t.Fatalf("cors origins=%v want %v", cfg.CORSAllowedOrigins, want)
	}
}

func TestEnvHelpers_InvalidFallBack(t *testing.T) {
	t.Setenv("STYLEHUB_TEST_INT", "-3")
	t.Setenv("STYLEHUB_TEST_INT32", "99999999999")
	t.Setenv("STYLEHUB_TEST_BOOL", "maybe")
	t.Setenv("STYLEHUB_TEST_DUR", "soon")

	if got := EnvInt("STYLEHUB_TEST_INT", 7); got != 7 {
		t.Fatalf("EnvInt=%d", got)
	}
	if got := EnvInt32("STYLEHUB_TEST_INT32", 5); got != 5 {
		t.Fatalf("EnvInt32=%d", got)
	}
	if got := EnvBool("STYLEHUB_TEST_BOOL", true); !got {
		t.Fatalf("EnvBool=%v", got)
	}
	if got := EnvDuration("STYLEHUB_TEST_DUR", time.Minute); got != time.Minute {
		t.Fatalf("EnvDuration=%v", got)
	}
}

func TestLoadDotEnv(t *testing.T) {
	const key = "STYLEHUB_TEST_DOTENV_VALUE"
	const preset = "STYLEHUB_TEST_DOTENV_PRESET"
	t.Cleanup(func() { _ = os.Unsetenv(key) })
	t.Setenv(preset, "from-env")

	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	content := key + "=from-file\n" + preset + "=from-file\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	if err := LoadDotEnv(filepath.Join(dir, "missing.env"), path); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if got := os.Getenv(key); got != "from-file" {
		t.Fatalf("%s=%q want from-file", key, got)
	}
	if got := os.Getenv(preset); got != "from-env" {
		t.Fatalf("%s=%q; real env must win", preset, got)
	}
}

func TestLoadDotEnv_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.env")
	if err := os.WriteFile(path, []byte("BAD-KEY=1\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	if err := LoadDotEnv(path); err == nil {
		t.Fatalf("expected parse error")
	}
}
