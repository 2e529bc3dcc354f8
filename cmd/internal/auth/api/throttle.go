package authapi

import (
	"slices"
	"sync"
	"time"
)

// loginThrottle counts failed logins per client IP in a sliding window.
// It is keyed by IP only, so a 429 says nothing about whether an account exists.
// A nil *loginThrottle never blocks.
type loginThrottle struct {
	mu        sync.Mutex
	limit     int
	window    time.Duration
	failures  map[string][]time.Time
	lastSweep time.Time
}

func newLoginThrottle(limit int, window time.Duration) *loginThrottle {
	if limit <= 0 || window <= 0 {
		return nil
	}
	return &loginThrottle{
		limit:    limit,
		window:   window,
		failures: make(map[string][]time.Time),
	}
}

// Blocked reports whether key is over the limit at now, and for how long.
func (t *loginThrottle) Blocked(key string, now time.Time) (bool, time.Duration) {
	if t == nil || key == "" {
		return false, 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	t.failures[key] = pruneBefore(t.failures[key], now.Add(-t.window))
	if len(t.failures[key]) == 0 {
		delete(t.failures, key)
		return false, 0
	}
	return evaluateWindowThrottle(now, t.failures[key], t.limit, t.window)
}

// Fail records one failed login for key.
func (t *loginThrottle) Fail(key string, now time.Time) {
	if t == nil || key == "" {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	t.sweep(now)
	events := pruneBefore(t.failures[key], now.Add(-t.window))
	// Only the newest limit events can matter for the decision.
	if len(events) >= t.limit {
		events = events[len(events)-t.limit+1:]
	}
	t.failures[key] = append(events, now)
}

// sweep drops idle keys at most once per window. Callers hold mu.
func (t *loginThrottle) sweep(now time.Time) {
	if now.Sub(t.lastSweep) < t.window {
		return
	}
	t.lastSweep = now
	cut := now.Add(-t.window)
	for k, events := range t.failures {
		if len(events) == 0 || !events[len(events)-1].After(cut) {
			delete(t.failures, k)
		}
	}
}

// pruneBefore keeps the events strictly after cut. events is ordered oldest first.
func pruneBefore(events []time.Time, cut time.Time) []time.Time {
	i := 0
	for i < len(events) && !events[i].After(cut) {
		i++
	}
	return events[i:]
}

// evaluateWindowThrottle blocks when at least limit failures fall inside the
// window ending at now. retry is how long until enough of them age out for the
// count to drop below limit.
func evaluateWindowThrottle(now time.Time, failures []time.Time, limit int, window time.Duration) (bool, time.Duration) {
	if limit <= 0 || window <= 0 {
		return false, 0
	}
	cut := now.Add(-window)

	inWindow := make([]time.Time, 0, len(failures))
	for _, f := range failures {
		if f.After(cut) && !f.After(now) {
			inWindow = append(inWindow, f)
		}
	}
	if len(inWindow) < limit {
		return false, 0
	}
	slices.SortFunc(inWindow, func(a, b time.Time) int { return a.Compare(b) })
	return true, inWindow[len(inWindow)-limit].Add(window).Sub(now)
}
