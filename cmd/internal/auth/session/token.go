package session

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"stylehub/cmd/identity/ids"
)

// Class separates access tokens from refresh tokens. A token is only ever
// accepted where its own class is expected.
type Class string

const (
	ClassAccess  Class = "access"
	ClassRefresh Class = "refresh"
)

// Claims is the verified content of a token.
type Claims struct {
	ClientID  int64
	Class     Class
	ID        string
	Issuer    string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type wireClaims struct {
	jwt.RegisteredClaims
	Type Class `json:"type"`
}

// JWTCodec issues and verifies HS256 tokens under one process-wide secret.
type JWTCodec struct {
	secret []byte
	issuer string
	leeway time.Duration
}

// NewJWTCodec builds a codec from cfg. An empty secret is refused.
func NewJWTCodec(cfg Config) (*JWTCodec, error) {
	if len(cfg.SecretKey) == 0 {
		return nil, ErrConfig
	}
	issuer := cfg.Issuer
	if issuer == "" {
		issuer = DefaultConfig().Issuer
	}
	secret := make([]byte, len(cfg.SecretKey))
	copy(secret, cfg.SecretKey)

	return &JWTCodec{secret: secret, issuer: issuer, leeway: cfg.ClockSkew}, nil
}

// Issue signs a token of the given class for clientID, valid for ttl from now.
// The returned expiry is the exact exp claim (second precision).
func (c *JWTCodec) Issue(clientID int64, class Class, ttl time.Duration, now time.Time) (string, time.Time, error) {
	jti, err := ids.NewULID(now)
	if err != nil {
		return "", time.Time{}, err
	}

	iat := jwt.NewNumericDate(now)
	exp := jwt.NewNumericDate(now.Add(ttl))

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, wireClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Subject:   strconv.FormatInt(clientID, 10),
			IssuedAt:  iat,
			ExpiresAt: exp,
			ID:        jti,
		},
		Type: class,
	})

	signed, err := tok.SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp.Time, nil
}

// Verify checks signature, expiry, issuer and class.
// Every failure is an *InvalidTokenError; errors.Is(err, ErrInvalidToken) holds for all of them.
func (c *JWTCodec) Verify(token string, expected Class, now time.Time) (Claims, error) {
	if token == "" || len(token) > 8192 {
		return Claims{}, invalidToken(ReasonMalformed)
	}

	p := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithLeeway(c.leeway),
		jwt.WithIssuer(c.issuer),
		jwt.WithExpirationRequired(),
	)

	var wc wireClaims
	_, err := p.ParseWithClaims(token, &wc, func(*jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil {
		return Claims{}, invalidToken(classifyJWTError(err))
	}

	if wc.Type != expected {
		if wc.Type == ClassAccess || wc.Type == ClassRefresh {
			return Claims{}, invalidToken(ReasonWrongClass)
		}
		return Claims{}, invalidToken(ReasonMalformed)
	}

	id, err := strconv.ParseInt(wc.Subject, 10, 64)
	if err != nil || id <= 0 {
		return Claims{}, invalidToken(ReasonMalformed)
	}

	out := Claims{
		ClientID:  id,
		Class:     wc.Type,
		ID:        wc.ID,
		Issuer:    wc.Issuer,
		ExpiresAt: wc.ExpiresAt.Time.UTC(),
	}
	if wc.IssuedAt != nil {
		out.IssuedAt = wc.IssuedAt.Time.UTC()
	}
	return out, nil
}

func classifyJWTError(err error) Reason {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return ReasonBadSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return ReasonExpired
	default:
		return ReasonMalformed
	}
}
