package authapi

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"stylehub/cmd/identity"
	"stylehub/cmd/internal/auth/session"
	"stylehub/cmd/security/password"
)

// Sessions is the part of *session.Service the HTTP layer needs.
type Sessions interface {
	Login(ctx context.Context, loginKey, password string) (session.Issued, identity.Client, error)
	Authenticate(ctx context.Context, bearer string) (identity.Client, error)
	Refresh(ctx context.Context, refreshToken string) (session.Issued, identity.Client, error)
	Logout(ctx context.Context, refreshToken string)
	Register(ctx context.Context, in session.RegisterInput) (identity.Client, error)
	Config() session.Config
}

// Handler wires HTTP auth endpoints to the session service.
type Handler struct {
	log *slog.Logger
	cfg Config

	sessions   Sessions
	refreshTTL time.Duration
	validate   *requestValidator
	throttle   *loginThrottle
	now        func() time.Time
}

// NewHandler constructs an auth Handler.
func NewHandler(log *slog.Logger, sessions Sessions, cfg Config) (*Handler, error) {
	if log == nil {
		log = slog.Default()
	}
	if sessions == nil {
		return nil, errors.New("auth: nil session service")
	}
	if strings.TrimSpace(cfg.RefreshCookieName) == "" {
		return nil, errors.New("auth: empty refresh cookie name")
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultConfig().MaxBodyBytes
	}

	return &Handler{
		log:        log,
		cfg:        cfg,
		sessions:   sessions,
		refreshTTL: sessions.Config().RefreshTTL,
		validate:   newRequestValidator(),
		throttle:   newLoginThrottle(cfg.LoginIPMax, cfg.LoginIPWindow),
		now:        time.Now,
	}, nil
}

// Register wires auth routes onto the provided mux.
func (h *Handler) Register(mux *http.ServeMux) {
	if h == nil || mux == nil {
		return
	}
	mux.HandleFunc("POST /auth/token", h.handleToken)
	mux.HandleFunc("POST /auth/refresh", h.handleRefresh)
	mux.HandleFunc("POST /auth/logout", h.handleLogout)
	mux.Handle("GET /auth/me", h.RequireClient(http.HandlerFunc(h.handleMe)))
	mux.Handle("GET /auth/check", h.RequireClient(http.HandlerFunc(h.handleCheck)))
	mux.HandleFunc("POST /clients", h.handleRegister)
}

// ---- handlers ----

func (h *Handler) handleToken(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxBodyBytes)
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid form body")
		return
	}

	loginKey := strings.TrimSpace(r.PostForm.Get("username"))
	pw := r.PostForm.Get("password")
	if loginKey == "" || pw == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "username and password are required")
		return
	}

	ip := ipString(clientIP(r, h.cfg.TrustProxy))
	if blocked, retry := h.throttle.Blocked(ip, h.now()); blocked {
		h.auditLoginThrottled(r, retry)
		writeRateLimited(w, retry)
		return
	}

	issued, c, err := h.sessions.Login(r.Context(), loginKey, pw)
	if err != nil {
		if errors.Is(session.Public(err), session.ErrInvalidCredentials) {
			h.throttle.Fail(ip, h.now())
			h.auditLoginFailed(r, loginKey, err)
			writeInvalidCredentials(w)
			return
		}
		h.log.ErrorContext(r.Context(), "auth.login.fail", "err", err)
		writeServerError(w)
		return
	}

	h.auditLoginSuccess(r, c.ID)
	h.setRefreshCookie(w, issued.RefreshToken, issued.RefreshExp)

	resp := toTokenResponse(issued)
	resp.Client = toClientSummary(c)
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	tok, ok := h.refreshTokenFromCookie(r)
	if !ok {
		h.audit(r.Context(), slog.LevelInfo, "auth.refresh.failed", r, "reason", string(session.ReasonMissingToken))
		writeUnauthorized(w)
		return
	}

	issued, c, err := h.sessions.Refresh(r.Context(), tok)
	if err != nil {
		if errors.Is(session.Public(err), session.ErrUnauthorized) {
			h.auditRefreshFailed(r, err)
			writeUnauthorized(w)
			return
		}
		h.log.ErrorContext(r.Context(), "auth.refresh.fail", "err", err)
		writeServerError(w)
		return
	}

	h.auditRefreshSuccess(r, c.ID)
	h.setRefreshCookie(w, issued.RefreshToken, issued.RefreshExp)
	writeJSON(w, http.StatusOK, toTokenResponse(issued))
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if tok, ok := h.refreshTokenFromCookie(r); ok {
		h.sessions.Logout(r.Context(), tok)
	}
	h.auditLogout(r)
	h.expireRefreshCookie(w)
	writeJSON(w, http.StatusOK, statusResponse{Status: "logged_out"})
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	c, ok := ClientFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}
	writeJSON(w, http.StatusOK, meResponse{Status: "logged_in", User: toClientResponse(c)})
}

func (h *Handler) handleCheck(w http.ResponseWriter, r *http.Request) {
	c, ok := ClientFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}
	writeJSON(w, http.StatusOK, checkResponse{Status: "logged_in", ClientID: c.ID})
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}
	if err := h.validate.Validate(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	c, err := h.sessions.Register(r.Context(), session.RegisterInput{
		Phone:    optional(req.Phone),
		Email:    optional(req.Email),
		Password: req.Password,
		Name:     optional(req.Name),
		FullName: optional(req.FullName),
	})
	if err != nil {
		switch {
		case identity.IsConflict(err):
			writeError(w, http.StatusConflict, "already_registered", identity.ConflictField(err)+" is already registered")
		case errors.Is(err, password.ErrWeakPassword):
			writeError(w, http.StatusBadRequest, "weak_password", "password is too weak")
		case password.IsPolicyError(err):
			writeError(w, http.StatusBadRequest, "invalid_password", err.Error())
		case identity.IsInvalidInput(err):
			writeError(w, http.StatusBadRequest, "invalid_request", "a valid phone or email is required")
		default:
			h.log.ErrorContext(r.Context(), "auth.register.fail", "err", err)
			writeServerError(w)
		}
		return
	}

	h.auditRegistered(r, c.ID)
	writeJSON(w, http.StatusCreated, toClientResponse(c))
}

// ---- bearer middleware ----

type clientCtxKey struct{}

// RequireClient resolves the bearer token and rejects the request with 401 when
// it does not name an existing client. Downstream handlers read the client with
// ClientFromContext.
func (h *Handler) RequireClient(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := h.sessions.Authenticate(r.Context(), bearerToken(r))
		if err != nil {
			if errors.Is(session.Public(err), session.ErrUnauthorized) {
				writeUnauthorized(w)
				return
			}
			h.log.ErrorContext(r.Context(), "auth.authenticate.fail", "err", err)
			writeServerError(w)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), clientCtxKey{}, c)))
	})
}

// ClientFromContext returns the client attached by RequireClient.
func ClientFromContext(ctx context.Context) (identity.Client, bool) {
	c, ok := ctx.Value(clientCtxKey{}).(identity.Client)
	return c, ok
}

// ---- helpers ----

func bearerToken(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if raw == "" {
		return ""
	}
	parts := strings.SplitN(raw, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func optional(s string) *string {
	v := strings.TrimSpace(s)
	if v == "" {
		return nil
	}
	return &v
}

func clientIP(r *http.Request, trustProxy bool) net.IP {
	if trustProxy {
		if ip := parseForwardedIP(r.Header.Get("X-Forwarded-For")); ip != nil {
			return ip
		}
		if ip := net.ParseIP(strings.TrimSpace(r.Header.Get("X-Real-IP"))); ip != nil {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil {
		if ip := net.ParseIP(host); ip != nil {
			return ip
		}
	}
	return nil
}

func parseForwardedIP(raw string) net.IP {
	if raw == "" {
		return nil
	}
	for _, p := range strings.Split(raw, ",") {
		if ip := net.ParseIP(strings.TrimSpace(p)); ip != nil {
			return ip
		}
	}
	return nil
}
