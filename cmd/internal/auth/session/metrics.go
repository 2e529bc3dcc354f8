package session

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts auth outcomes by operation. Outcome is "ok" or a Reason.
type Metrics struct {
	outcomes *prometheus.CounterVec
}

// NewMetrics registers the session collectors on reg.
// A nil reg yields unregistered collectors, which is what tests want.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stylehub",
			Subsystem: "auth",
			Name:      "outcomes_total",
			Help:      "Authentication outcomes by operation and result.",
		}, []string{"op", "outcome"}),
	}
	if reg != nil {
		reg.MustRegister(m.outcomes)
	}
	return m
}

func (m *Metrics) observe(op string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = string(ReasonOf(err))
		if outcome == "" {
			outcome = "error"
		}
	}
	m.outcomes.WithLabelValues(op, outcome).Inc()
}
