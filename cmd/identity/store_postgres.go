package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PostgresStore implements Store over PostgreSQL through database/sql.
//
// The *sql.DB is owned by the caller and is usually obtained from the app's
// pgx pool with stdlib.OpenDBFromPool; this store never closes it.
// Login-key uniqueness comes from the uq_users_phone and uq_users_email constraints.
type PostgresStore struct {
	db    *sql.DB
	table string
}

// PostgresOption configures the store.
type PostgresOption func(*PostgresStore) error

var pgIdentRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// WithSchema sets the Postgres schema holding the users table (default "public").
// The schema name is validated to be a legal PostgreSQL identifier.
func WithSchema(schema string) PostgresOption {
	return func(s *PostgresStore) error {
		schema = strings.TrimSpace(schema)
		if schema == "" {
			return fmt.Errorf("identity: empty schema")
		}
		if !pgIdentRe.MatchString(schema) {
			return fmt.Errorf("identity: invalid schema identifier")
		}
		s.table = pgIdent(schema, "users")
		return nil
	}
}

// NewPostgresStore constructs a PostgresStore.
func NewPostgresStore(db *sql.DB, opts ...PostgresOption) (*PostgresStore, error) {
	st := &PostgresStore{
		db:    db,
		table: pgIdent("public", "users"),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(st); err != nil {
			return nil, err
		}
	}
	if st.db == nil {
		return nil, fmt.Errorf("identity: nil db")
	}
	return st, nil
}

const clientColumns = `id, phone, email, password_hash, name, full_name, role, created_at`

// CreateClient inserts a client and returns it with the storage-assigned id.
func (s *PostgresStore) CreateClient(ctx context.Context, in CreateClientInput) (Client, error) {
	const op = "identity.CreateClient"

	if err := ctx.Err(); err != nil {
		return Client{}, err
	}
	in, err := normalizedInput(op, in)
	if err != nil {
		return Client{}, err
	}

	var id int64
	err = s.db.QueryRowContext(ctx,
		`INSERT INTO `+s.table+` (phone, email, password_hash, name, full_name, role, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		in.Phone, in.Email, in.PasswordHash, in.Name, in.FullName, in.Role, in.Now,
	).Scan(&id)
	if err != nil {
		if field, ok := pgClassifyUniqueViolation(err); ok {
			return Client{}, ConflictError{Op: op, Field: field}
		}
		return Client{}, fmt.Errorf("%s: %w", op, err)
	}

	return Client{
		ID:           id,
		Phone:        in.Phone,
		Email:        in.Email,
		PasswordHash: in.PasswordHash,
		Name:         in.Name,
		FullName:     in.FullName,
		Role:         in.Role,
		CreatedAt:    in.Now,
	}, nil
}

// FindByLoginKey looks the client up by phone or email, depending on the key shape.
func (s *PostgresStore) FindByLoginKey(ctx context.Context, key string) (Client, error) {
	const op = "identity.FindByLoginKey"

	kind, norm := ParseLoginKey(key)
	if norm == "" {
		return Client{}, notFound(op)
	}

	column := "phone"
	if kind == LoginKeyEmail {
		column = "email"
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT `+clientColumns+` FROM `+s.table+` WHERE `+column+` = $1`,
		norm,
	)
	return scanClient(op, row)
}

// FindByID loads a client by id.
func (s *PostgresStore) FindByID(ctx context.Context, id int64) (Client, error) {
	const op = "identity.FindByID"

	if id <= 0 {
		return Client{}, notFound(op)
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT `+clientColumns+` FROM `+s.table+` WHERE id = $1`,
		id,
	)
	return scanClient(op, row)
}

func scanClient(op string, row *sql.Row) (Client, error) {
	var (
		c                                   Client
		phone, email, name, fullName, role sql.NullString
	)
	err := row.Scan(&c.ID, &phone, &email, &c.PasswordHash, &name, &fullName, &role, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Client{}, notFound(op)
		}
		return Client{}, fmt.Errorf("%s: %w", op, err)
	}

	c.Phone = nullStringPtr(phone)
	c.Email = nullStringPtr(email)
	c.Name = nullStringPtr(name)
	c.FullName = nullStringPtr(fullName)
	c.Role = nullStringPtr(role)
	c.CreatedAt = c.CreatedAt.UTC()
	return c, nil
}

func nullStringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

func pgIdent(schema, name string) string {
	return pgx.Identifier{schema, name}.Sanitize()
}

func pgClassifyUniqueViolation(err error) (field string, ok bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return "", false
	}
	if pgErr.Code != "23505" { // unique_violation
		return "", false
	}

	// Prefer stable constraint names, fall back to substring matching.
	c := strings.ToLower(strings.TrimSpace(pgErr.ConstraintName))
	switch {
	case c == "uq_users_phone", strings.Contains(c, "phone"):
		return "phone", true
	case c == "uq_users_email", strings.Contains(c, "email"):
		return "email", true
	default:
		return "login_key", true
	}
}
