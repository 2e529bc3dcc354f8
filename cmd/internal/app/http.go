package app

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// readyCheck is one dependency probed by /readyz.
type readyCheck struct {
	name string
	ping func(ctx context.Context) error
}

func (a *App) registerHTTP(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	mux.HandleFunc("GET /readyz", a.handleReady)

	if a.cfg.MetricsEnabled && a.registry != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{
			Registry: a.registry,
		}))
	}

	if a.auth != nil {
		a.auth.Register(mux)
	}
}

func (a *App) handleReady(w http.ResponseWriter, r *http.Request) {
	if a.cfg.ReadinessRequireDB && a.db == nil {
		http.Error(w, "db not configured", http.StatusServiceUnavailable)
		return
	}

	for _, c := range a.readyChecks {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		err := c.ping(ctx)
		cancel()
		if err != nil {
			a.log.InfoContext(r.Context(), "readyz.not_ready", "dependency", c.name, "err", err)
			http.Error(w, c.name+" not ready", http.StatusServiceUnavailable)
			return
		}
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready\n"))
}

// newRegistry returns a registry carrying the Go runtime and process collectors.
func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}
