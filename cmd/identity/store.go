package identity

import (
	"context"
	"strings"
	"time"
)

// Client is a registered StyleHub user. PasswordHash is opaque and never the plaintext.
type Client struct {
	ID    int64
	Phone *string
	Email *string

	PasswordHash string

	Name     *string
	FullName *string
	Role     *string

	CreatedAt time.Time
}

// LoginKey returns the key the client logs in with: phone when present, otherwise email.
func (c Client) LoginKey() string {
	if c.Phone != nil {
		return *c.Phone
	}
	if c.Email != nil {
		return *c.Email
	}
	return ""
}

// CreateClientInput describes a registration.
// At least one of Phone or Email must be provided; PasswordHash must already be hashed.
type CreateClientInput struct {
	Phone        *string
	Email        *string
	PasswordHash string
	Name         *string
	FullName     *string
	Role         *string
	Now          time.Time
}

// Store is the credential store boundary.
//
// Implementations must be safe for concurrent use and must enforce login-key
// uniqueness atomically, returning ConflictError on a duplicate phone or email.
type Store interface {
	CreateClient(ctx context.Context, in CreateClientInput) (Client, error)

	// FindByLoginKey resolves a phone number or email address.
	// Returns NotFoundError when no client matches.
	FindByLoginKey(ctx context.Context, key string) (Client, error)

	// FindByID returns NotFoundError when the client does not exist (anymore).
	FindByID(ctx context.Context, id int64) (Client, error)
}

// normalizedInput validates in and returns a copy with normalized login keys.
// Each key must classify under ParseLoginKey as the column it is stored in,
// so that it can be used to log in.
func normalizedInput(op string, in CreateClientInput) (CreateClientInput, error) {
	out := in
	out.Phone = trimPtr(in.Phone)
	out.Email = trimPtr(in.Email)
	out.Name = trimPtr(in.Name)
	out.FullName = trimPtr(in.FullName)
	out.Role = trimPtr(in.Role)

	if out.Phone == nil && out.Email == nil {
		return CreateClientInput{}, invalid(op, "phone or email is required")
	}
	if out.Phone != nil {
		kind, p := ParseLoginKey(*out.Phone)
		if kind != LoginKeyPhone || p == "" {
			return CreateClientInput{}, invalid(op, "phone number is invalid")
		}
		out.Phone = &p
	}
	if out.Email != nil {
		kind, e := ParseLoginKey(*out.Email)
		if kind != LoginKeyEmail {
			return CreateClientInput{}, invalid(op, "email address is invalid")
		}
		out.Email = &e
	}
	if out.PasswordHash == "" {
		return CreateClientInput{}, invalid(op, "password hash is required")
	}
	if out.Now.IsZero() {
		out.Now = time.Now().UTC()
	}
	return out, nil
}

func trimPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	if v == "" {
		return nil
	}
	return &v
}
