// Package app wires the stylehub server runtime: config, logging, storage,
// the auth HTTP surface, health probes and metrics.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"stylehub/cmd/identity"
	authapi "stylehub/cmd/internal/auth/api"
	"stylehub/cmd/internal/auth/session"
	"stylehub/cmd/security/password"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

// App is the stylehub server runtime. It owns the DB pool and the Redis client.
type App struct {
	cfg Config
	log Logger

	db    *pgxpool.Pool
	sqlDB *sql.DB
	rdb   *redis.Client

	registry    *prometheus.Registry
	readyChecks []readyCheck

	sessions *session.Service
	auth     *authapi.Handler
	handler  http.Handler
}

// New constructs a fully wired App. Password, session and cookie settings are
// read from the environment by their owning packages.
func New(ctx context.Context, cfg Config, log Logger) (_ *App, err error) {
	if log == nil {
		log = NewLogger(cfg.LogLevel, cfg.LogFormat)
	}

	hasher, err := password.FromEnv()
	if err != nil {
		return nil, fmt.Errorf("password config: %w", err)
	}
	sessCfg, err := session.LoadConfigFromEnv()
	if err != nil {
		return nil, err
	}
	if err := ValidateSecurityConfig(cfg, sessCfg); err != nil {
		return nil, err
	}

	a := &App{cfg: cfg, log: log, registry: newRegistry()}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	store, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}

	opts := []session.Option{
		session.WithLogger(log),
		session.WithMetrics(session.NewMetrics(a.registry)),
	}
	if cfg.RedisURL != "" {
		a.rdb, err = NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("redis: %w", err)
		}
		rdb := a.rdb
		a.readyChecks = append(a.readyChecks, readyCheck{name: "redis", ping: func(ctx context.Context) error {
			return PingRedis(ctx, rdb, 2*time.Second)
		}})
		opts = append(opts, session.WithDenylist(session.NewRedisDenylist(a.rdb)))
		log.Info("redis.enabled")
	} else if sessCfg.RevokeOnLogout {
		log.Warn("auth.revocation.memory_denylist", "hint", "set STYLEHUB_REDIS_URL to share revocations across instances")
	}

	a.sessions, err = session.NewService(sessCfg, store, hasher, opts...)
	if err != nil {
		return nil, err
	}
	a.auth, err = authapi.NewHandler(log, a.sessions, authapi.LoadConfigFromEnv())
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	a.registerHTTP(mux)

	var h http.Handler = mux
	h = WithSecurityHeaders(h)
	if len(cfg.CORSAllowedOrigins) > 0 {
		h = WithCORS(h, cfg, log)
	}
	h = WithRequestLogging(h, log)
	a.handler = WithRequestID(h)

	return a, nil
}

// openStore picks the Postgres credential store when a database URL is set and
// the in-memory store otherwise.
func (a *App) openStore(ctx context.Context) (identity.Store, error) {
	if a.cfg.DatabaseURL == "" {
		a.log.Warn("db.disabled.inmemory_store")
		return identity.NewMemoryStore(), nil
	}

	pool, err := NewDBPool(ctx, a.cfg)
	if err != nil {
		return nil, fmt.Errorf("db: %w", err)
	}
	a.db = pool
	a.sqlDB = stdlib.OpenDBFromPool(pool)
	a.readyChecks = append(a.readyChecks, readyCheck{name: "db", ping: func(ctx context.Context) error {
		return PingDB(ctx, pool, 2*time.Second)
	}})

	st, err := identity.NewPostgresStore(a.sqlDB, identity.WithSchema(a.cfg.DBSchema))
	if err != nil {
		return nil, err
	}
	a.log.Info("db.enabled.postgres_store", "schema", a.cfg.DBSchema)
	return st, nil
}

// Handler returns the fully wrapped HTTP handler.
func (a *App) Handler() http.Handler { return a.handler }

// Run starts the HTTP server and blocks until context cancellation or fatal server error.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           a.handler,
		ReadHeaderTimeout: nonZeroDuration(a.cfg.ReadHeaderTimeout, 5*time.Second),
		ReadTimeout:       nonZeroDuration(a.cfg.ReadTimeout, 15*time.Second),
		WriteTimeout:      nonZeroDuration(a.cfg.WriteTimeout, 15*time.Second),
		IdleTimeout:       nonZeroDuration(a.cfg.IdleTimeout, 60*time.Second),
		MaxHeaderBytes:    nonZeroInt(a.cfg.MaxHeaderBytes, 1<<20),
		ErrorLog:          slog.NewLogLogger(a.log.Handler(), slog.LevelWarn),
	}

	a.log.Info("server.start",
		"addr", a.cfg.HTTPAddr,
		"db_enabled", a.db != nil,
		"redis_enabled", a.rdb != nil,
		"revoke_on_logout", a.sessions.Config().RevokeOnLogout,
	)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		a.log.Info("server.stop", "reason", "context_done")
	case err := <-errCh:
		a.log.Error("server.fail", "err", err)
		a.Close()
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), nonZeroDuration(a.cfg.ShutdownTimeout, 10*time.Second))
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Error("server.shutdown.fail", "err", err)
		a.Close()
		return err
	}

	a.Close()
	a.log.Info("server.stopped")
	return nil
}

// Close releases the DB pool and the Redis client. It is safe to call more than once.
func (a *App) Close() {
	if a.sqlDB != nil {
		if err := a.sqlDB.Close(); err != nil {
			a.log.Error("db.close.fail", "err", err)
		}
		a.sqlDB = nil
	}
	if a.db != nil {
		a.db.Close()
		a.db = nil
	}
	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.log.Error("redis.close.fail", "err", err)
		}
		a.rdb = nil
	}
}

func nonZeroDuration(v, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return v
}

func nonZeroInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
