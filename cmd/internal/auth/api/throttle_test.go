package authapi

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"stylehub/cmd/identity"
	"stylehub/cmd/internal/auth/session"
	"stylehub/cmd/security/password"
)

func TestEvaluateWindowThrottle(t *testing.T) {
	now := time.Date(2026, 2, 13, 12, 0, 0, 0, time.UTC)

	failures := []time.Time{
		now.Add(-1 * time.Minute),
		now.Add(-2 * time.Minute),
		now.Add(-6 * time.Minute),
	}

	blocked, retry := evaluateWindowThrottle(now, failures, 2, 5*time.Minute)
	if !blocked {
		t.Fatalf("expected window throttle to block")
	}
	if retry != 3*time.Minute {
		t.Fatalf("expected retry=3m, got %v", retry)
	}

	blocked, retry = evaluateWindowThrottle(now, failures, 3, 5*time.Minute)
	if blocked {
		t.Fatalf("expected window throttle to allow")
	}
	if retry != 0 {
		t.Fatalf("expected retry=0, got %v", retry)
	}
}

func TestEvaluateWindowThrottle_OverLimitWaitsForEnoughToExpire(t *testing.T) {
	now := time.Date(2026, 2, 13, 12, 0, 0, 0, time.UTC)

	// Unordered on purpose.
	failures := []time.Time{
		now.Add(-1 * time.Minute),
		now.Add(-4 * time.Minute),
		now.Add(-2 * time.Minute),
	}

	// Two of three must age out before the count drops below 2; the -2m one is the last of those.
	blocked, retry := evaluateWindowThrottle(now, failures, 2, 5*time.Minute)
	if !blocked || retry != 3*time.Minute {
		t.Fatalf("blocked=%v retry=%v; want true 3m", blocked, retry)
	}
}

func TestEvaluateWindowThrottle_Disabled(t *testing.T) {
	now := time.Now()
	if blocked, _ := evaluateWindowThrottle(now, []time.Time{now}, 0, time.Minute); blocked {
		t.Fatalf("zero limit must never block")
	}
}

func TestLoginThrottle_SlidingWindow(t *testing.T) {
	now := time.Date(2026, 2, 13, 12, 0, 0, 0, time.UTC)
	th := newLoginThrottle(3, 10*time.Minute)

	for i := 0; i < 3; i++ {
		if blocked, _ := th.Blocked("203.0.113.7", now); blocked {
			t.Fatalf("blocked after %d failures", i)
		}
		th.Fail("203.0.113.7", now.Add(time.Duration(i)*time.Minute))
	}

	at := now.Add(3 * time.Minute)
	blocked, retry := th.Blocked("203.0.113.7", at)
	if !blocked || retry != 7*time.Minute {
		t.Fatalf("blocked=%v retry=%v; want true 7m", blocked, retry)
	}
	if blocked, _ := th.Blocked("198.51.100.1", at); blocked {
		t.Fatalf("other IPs must not be affected")
	}

	// Oldest failure ages out.
	if blocked, _ := th.Blocked("203.0.113.7", now.Add(10*time.Minute)); blocked {
		t.Fatalf("expected unblock once the oldest failure leaves the window")
	}
}

func TestLoginThrottle_NilAndEmptyKey(t *testing.T) {
	var th *loginThrottle
	th.Fail("x", time.Now())
	if blocked, _ := th.Blocked("x", time.Now()); blocked {
		t.Fatalf("nil throttle must not block")
	}

	if newLoginThrottle(0, time.Minute) != nil {
		t.Fatalf("zero limit must disable the throttle")
	}

	live := newLoginThrottle(1, time.Minute)
	live.Fail("", time.Now())
	if blocked, _ := live.Blocked("", time.Now()); blocked {
		t.Fatalf("empty key must not block")
	}
}

func TestLoginThrottle_SweepsIdleKeys(t *testing.T) {
	now := time.Date(2026, 2, 13, 12, 0, 0, 0, time.UTC)
	th := newLoginThrottle(5, time.Minute)

	th.Fail("a", now)
	th.Fail("b", now.Add(2*time.Minute))

	th.mu.Lock()
	_, stale := th.failures["a"]
	n := len(th.failures)
	th.mu.Unlock()
	if stale || n != 1 {
		t.Fatalf("expected idle key swept, have %d keys (a present=%v)", n, stale)
	}
}

func TestToken_ThrottledAfterRepeatedFailures(t *testing.T) {
	scfg := session.DefaultConfig()
	scfg.SecretKey = []byte("authapi-test-secret")
	hasher := password.DefaultConfig()
	hasher.Algorithm = password.AlgorithmBcrypt
	hasher.WorkFactor = 4
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	svc, err := session.NewService(scfg, identity.NewMemoryStore(), hasher, session.WithLogger(log))
	if err != nil {
		t.Fatalf("session.NewService: %v", err)
	}
	cfg := DefaultConfig()
	cfg.LoginIPMax = 2
	h, err := NewHandler(log, svc, cfg)
	if err != nil {
		t.Fatalf("NewHandler: %v", err)
	}
	mux := http.NewServeMux()
	h.Register(mux)

	form := url.Values{"username": {"+998900000000"}, "password": {"not-the-password"}}
	post := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/auth/token", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.RemoteAddr = "203.0.113.9:51000"
		rr := httptest.NewRecorder()
		mux.ServeHTTP(rr, req)
		return rr
	}

	for i := 0; i < 2; i++ {
		if rr := post(); rr.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d: status=%d want 401", i, rr.Code)
		}
	}

	rr := post()
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("status=%d want 429", rr.Code)
	}
	if rr.Header().Get("Retry-After") == "" {
		t.Fatalf("missing Retry-After")
	}
	var body errorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Code != "rate_limited" {
		t.Fatalf("code=%q", body.Error.Code)
	}
}
