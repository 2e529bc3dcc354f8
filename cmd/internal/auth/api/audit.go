package authapi

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"stylehub/cmd/identity"
	"stylehub/cmd/internal/auth/session"
)

// Audit events go to the structured log; there is no audit table.

func (h *Handler) auditLoginFailed(r *http.Request, loginKey string, err error) {
	h.audit(r.Context(), slog.LevelWarn, "auth.login.failed", r,
		"login_kind", loginKindOf(loginKey),
		"reason", string(session.ReasonOf(err)),
	)
}

func (h *Handler) auditLoginThrottled(r *http.Request, retryAfter time.Duration) {
	h.audit(r.Context(), slog.LevelWarn, "auth.login.throttled", r, "retry_after_s", int64(retryAfter.Seconds()))
}

func (h *Handler) auditLoginSuccess(r *http.Request, clientID int64) {
	h.audit(r.Context(), slog.LevelInfo, "auth.login.success", r, "client_id", clientID)
}

func (h *Handler) auditRefreshFailed(r *http.Request, err error) {
	h.audit(r.Context(), slog.LevelWarn, "auth.refresh.failed", r, "reason", string(session.ReasonOf(err)))
}

func (h *Handler) auditRefreshSuccess(r *http.Request, clientID int64) {
	h.audit(r.Context(), slog.LevelInfo, "auth.refresh.success", r, "client_id", clientID)
}

func (h *Handler) auditLogout(r *http.Request) {
	h.audit(r.Context(), slog.LevelInfo, "auth.logout", r)
}

func (h *Handler) auditRegistered(r *http.Request, clientID int64) {
	h.audit(r.Context(), slog.LevelInfo, "auth.register.success", r, "client_id", clientID)
}

func (h *Handler) audit(ctx context.Context, level slog.Level, action string, r *http.Request, attrs ...any) {
	if h == nil || h.log == nil {
		return
	}
	base := []any{"ip", ipString(clientIP(r, h.cfg.TrustProxy))}
	if ua := strings.TrimSpace(r.UserAgent()); ua != "" {
		base = append(base, "user_agent", ua)
	}
	h.log.Log(ctx, level, action, append(base, attrs...)...)
}

// loginKindOf keeps raw phone numbers and emails out of the logs.
func loginKindOf(key string) string {
	if strings.TrimSpace(key) == "" {
		return "empty"
	}
	kind, _ := identity.ParseLoginKey(key)
	return kind.String()
}

func ipString(ip net.IP) string {
	if ip == nil {
		return ""
	}
	return ip.String()
}
