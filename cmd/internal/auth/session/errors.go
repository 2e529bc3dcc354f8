package session

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCredentials is the only outcome a failed login ever reports.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUnauthorized is the only outcome a failed token check ever reports.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidToken is returned by the codec for any token that fails verification.
	ErrInvalidToken = errors.New("invalid token")

	// ErrConfig is returned for invalid configuration.
	ErrConfig = errors.New("invalid config")
)

// Reason is the internal cause of an auth failure. It goes to logs and metrics,
// never to the client.
type Reason string

const (
	ReasonUnknownLogin  Reason = "unknown_login"
	ReasonBadPassword   Reason = "bad_password"
	ReasonMalformedHash Reason = "malformed_hash"

	ReasonMalformed    Reason = "malformed"
	ReasonBadSignature Reason = "bad_signature"
	ReasonExpired      Reason = "expired"
	ReasonWrongClass   Reason = "wrong_class"

	ReasonRevoked      Reason = "revoked"
	ReasonIdentityGone Reason = "identity_gone"
	ReasonMissingToken Reason = "missing_token"
)

// InvalidTokenError is a token verification failure with its cause.
type InvalidTokenError struct {
	Reason Reason
}

func (e *InvalidTokenError) Error() string {
	return fmt.Sprintf("%v: %s", ErrInvalidToken, e.Reason)
}

func (e *InvalidTokenError) Unwrap() error { return ErrInvalidToken }

func invalidToken(r Reason) error { return &InvalidTokenError{Reason: r} }

// AuthError is an authentication failure. Kind is ErrInvalidCredentials or
// ErrUnauthorized; Reason tells operators what actually happened.
type AuthError struct {
	Op     string
	Kind   error
	Reason Reason
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s: %v (%s)", e.Op, e.Kind, e.Reason)
}

func (e *AuthError) Unwrap() error { return e.Kind }

func badCredentials(op string, r Reason) error {
	return &AuthError{Op: op, Kind: ErrInvalidCredentials, Reason: r}
}

func unauthorized(op string, r Reason) error {
	return &AuthError{Op: op, Kind: ErrUnauthorized, Reason: r}
}

// ReasonOf extracts the internal reason from err, or "" if err is not an auth failure.
func ReasonOf(err error) Reason {
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae.Reason
	}
	var te *InvalidTokenError
	if errors.As(err, &te) {
		return te.Reason
	}
	return ""
}

// Public collapses err to the error a client is allowed to see.
// Auth failures become their public sentinel; anything else is returned unchanged
// so storage failures stay distinguishable from rejections.
func Public(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrInvalidCredentials):
		return ErrInvalidCredentials
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrInvalidToken):
		return ErrUnauthorized
	default:
		return err
	}
}
