package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"stylehub/cmd/identity"
	"stylehub/cmd/security/token"
)

// PasswordHasher is satisfied by password.Config.
// HashUnchecked skips the password policy and is only used for the internal dummy hash.
type PasswordHasher interface {
	Hash(password string) (string, error)
	HashUnchecked(password string) (string, error)
	Verify(encodedHash, password string) (bool, error)
}

// Issued is the result of a login or a refresh.
type Issued struct {
	AccessToken  string
	AccessExp    time.Time
	RefreshToken string
	RefreshExp   time.Time
}

// Service implements login, bearer authentication, refresh rotation and logout.
//
// It holds no per-request state; one instance serves every request concurrently.
type Service struct {
	cfg    Config
	codec  *JWTCodec
	store  identity.Store
	hasher PasswordHasher

	denylist Denylist
	metrics  *Metrics
	log      *slog.Logger
	now      func() time.Time

	// dummyHash is verified against when the login key is unknown so both
	// rejection paths cost one hash computation.
	dummyHash string
}

// Option configures a Service.
type Option func(*Service)

// WithDenylist sets the revocation backend. It is only consulted when
// Config.RevokeOnLogout is set.
func WithDenylist(d Denylist) Option {
	return func(s *Service) { s.denylist = d }
}

// WithMetrics records outcomes on m.
func WithMetrics(m *Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithLogger sets the logger used for rejected attempts.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithClock overrides time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService constructs a Service. It fails with ErrConfig when cfg is unusable.
func NewService(cfg Config, store identity.Store, hasher PasswordHasher, opts ...Option) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if store == nil || hasher == nil {
		return nil, fmt.Errorf("session: nil store or hasher: %w", ErrConfig)
	}

	codec, err := NewJWTCodec(cfg)
	if err != nil {
		return nil, err
	}

	s := &Service{
		cfg:    cfg,
		codec:  codec,
		store:  store,
		hasher: hasher,
		log:    slog.Default(),
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if cfg.RevokeOnLogout && s.denylist == nil {
		s.denylist = NewMemoryDenylist()
	}
	if !cfg.RevokeOnLogout {
		s.denylist = nil
	}

	s.dummyHash, err = newDummyHash(hasher)
	if err != nil {
		return nil, fmt.Errorf("session: dummy hash: %w", err)
	}
	return s, nil
}

func newDummyHash(h PasswordHasher) (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return h.HashUnchecked("dummy-" + hex.EncodeToString(b))
}

// Config returns the configuration the service was built with.
func (s *Service) Config() Config { return s.cfg }

// Login verifies loginKey/password and issues a fresh token pair.
// Any rejection is an *AuthError of kind ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, loginKey, password string) (Issued, identity.Client, error) {
	const op = "session.Login"

	iss, c, err := s.login(ctx, op, loginKey, password)
	s.record(ctx, op, err)
	return iss, c, err
}

func (s *Service) login(ctx context.Context, op, loginKey, password string) (Issued, identity.Client, error) {
	c, err := s.store.FindByLoginKey(ctx, loginKey)
	if err != nil {
		if identity.IsNotFound(err) {
			_, _ = s.hasher.Verify(s.dummyHash, password)
			return Issued{}, identity.Client{}, badCredentials(op, ReasonUnknownLogin)
		}
		return Issued{}, identity.Client{}, fmt.Errorf("%s: %w", op, err)
	}

	ok, err := s.hasher.Verify(c.PasswordHash, password)
	if err != nil {
		return Issued{}, identity.Client{}, badCredentials(op, ReasonMalformedHash)
	}
	if !ok {
		return Issued{}, identity.Client{}, badCredentials(op, ReasonBadPassword)
	}

	iss, err := s.issuePair(c.ID, s.now())
	if err != nil {
		return Issued{}, identity.Client{}, fmt.Errorf("%s: %w", op, err)
	}
	return iss, c, nil
}

// Authenticate resolves the client behind a bearer access token.
// Any rejection is an *AuthError of kind ErrUnauthorized.
func (s *Service) Authenticate(ctx context.Context, bearer string) (identity.Client, error) {
	const op = "session.Authenticate"

	c, err := s.authenticate(ctx, op, bearer)
	s.record(ctx, op, err)
	return c, err
}

func (s *Service) authenticate(ctx context.Context, op, bearer string) (identity.Client, error) {
	bearer = strings.TrimSpace(bearer)
	if bearer == "" {
		return identity.Client{}, unauthorized(op, ReasonMissingToken)
	}

	claims, err := s.codec.Verify(bearer, ClassAccess, s.now())
	if err != nil {
		return identity.Client{}, unauthorized(op, ReasonOf(err))
	}
	return s.lookup(ctx, op, claims.ClientID)
}

// Refresh exchanges a valid refresh token for a new pair.
// With revocation enabled the presented token is retired as part of the exchange.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (Issued, identity.Client, error) {
	const op = "session.Refresh"

	iss, c, err := s.refresh(ctx, op, refreshToken)
	s.record(ctx, op, err)
	return iss, c, err
}

func (s *Service) refresh(ctx context.Context, op, refreshToken string) (Issued, identity.Client, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return Issued{}, identity.Client{}, unauthorized(op, ReasonMissingToken)
	}

	now := s.now()
	claims, err := s.codec.Verify(refreshToken, ClassRefresh, now)
	if err != nil {
		return Issued{}, identity.Client{}, unauthorized(op, ReasonOf(err))
	}

	if s.denylist != nil {
		// Retire before minting so two concurrent exchanges of one token cannot both win.
		fresh, err := s.denylist.Retire(ctx, s.fingerprint(refreshToken), claims.ExpiresAt.Sub(now))
		if err != nil {
			return Issued{}, identity.Client{}, fmt.Errorf("%s: %w", op, err)
		}
		if !fresh {
			return Issued{}, identity.Client{}, unauthorized(op, ReasonRevoked)
		}
	}

	c, err := s.lookup(ctx, op, claims.ClientID)
	if err != nil {
		return Issued{}, identity.Client{}, err
	}

	iss, err := s.issuePair(c.ID, now)
	if err != nil {
		return Issued{}, identity.Client{}, fmt.Errorf("%s: %w", op, err)
	}
	return iss, c, nil
}

// Logout ends a session. Without revocation this is a no-op and the client is
// expected to discard its tokens. It never fails from the caller's point of view.
func (s *Service) Logout(ctx context.Context, refreshToken string) {
	const op = "session.Logout"

	refreshToken = strings.TrimSpace(refreshToken)
	if s.denylist == nil || refreshToken == "" {
		return
	}

	now := s.now()
	claims, err := s.codec.Verify(refreshToken, ClassRefresh, now)
	if err != nil {
		// Nothing worth remembering: the token is already unusable.
		return
	}
	s.revoke(ctx, op, s.fingerprint(refreshToken), claims.ExpiresAt.Sub(now))
}

// RegisterInput describes a new client. Password is plaintext and is hashed here.
type RegisterInput struct {
	Phone    *string
	Email    *string
	Password string
	Name     *string
	FullName *string
	Role     *string
}

// Register hashes the password and stores a new client.
// Policy failures come back as password errors; duplicates as identity.ConflictError.
func (s *Service) Register(ctx context.Context, in RegisterInput) (identity.Client, error) {
	const op = "session.Register"

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return identity.Client{}, err
	}

	c, err := s.store.CreateClient(ctx, identity.CreateClientInput{
		Phone:        in.Phone,
		Email:        in.Email,
		PasswordHash: hash,
		Name:         in.Name,
		FullName:     in.FullName,
		Role:         in.Role,
		Now:          s.now(),
	})
	if err != nil {
		if identity.IsConflict(err) || identity.IsInvalidInput(err) {
			return identity.Client{}, err
		}
		return identity.Client{}, fmt.Errorf("%s: %w", op, err)
	}

	s.log.InfoContext(ctx, "auth.register.ok", "client_id", c.ID)
	return c, nil
}

func (s *Service) lookup(ctx context.Context, op string, id int64) (identity.Client, error) {
	c, err := s.store.FindByID(ctx, id)
	if err != nil {
		if identity.IsNotFound(err) {
			return identity.Client{}, unauthorized(op, ReasonIdentityGone)
		}
		return identity.Client{}, fmt.Errorf("%s: %w", op, err)
	}
	return c, nil
}

func (s *Service) issuePair(clientID int64, now time.Time) (Issued, error) {
	access, accessExp, err := s.codec.Issue(clientID, ClassAccess, s.cfg.AccessTTL, now)
	if err != nil {
		return Issued{}, err
	}
	refresh, refreshExp, err := s.codec.Issue(clientID, ClassRefresh, s.cfg.RefreshTTL, now)
	if err != nil {
		return Issued{}, err
	}
	return Issued{
		AccessToken:  access,
		AccessExp:    accessExp,
		RefreshToken: refresh,
		RefreshExp:   refreshExp,
	}, nil
}

func (s *Service) fingerprint(tok string) string {
	return token.Fingerprint(tok, s.cfg.SecretKey)
}

func (s *Service) revoke(ctx context.Context, op, fp string, ttl time.Duration) {
	if err := s.denylist.Revoke(ctx, fp, ttl); err != nil {
		s.log.WarnContext(ctx, "auth.revoke.failed", "op", op, "err", err)
	}
}

func (s *Service) record(ctx context.Context, op string, err error) {
	s.metrics.observe(op, err)
	if err == nil {
		return
	}
	if r := ReasonOf(err); r != "" {
		s.log.InfoContext(ctx, "auth.rejected", "op", op, "reason", string(r))
		return
	}
	s.log.ErrorContext(ctx, "auth.failed", "op", op, "err", err)
}
