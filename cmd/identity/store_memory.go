package identity

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store used for tests and for running without a database.
// Uniqueness of phone and email is enforced under the same lock as the insert.
type MemoryStore struct {
	mu      sync.RWMutex
	nextID  int64
	byID    map[int64]Client
	byPhone map[string]int64
	byEmail map[string]int64
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:    make(map[int64]Client),
		byPhone: make(map[string]int64),
		byEmail: make(map[string]int64),
	}
}

// CreateClient inserts a client with the next sequential id.
func (s *MemoryStore) CreateClient(ctx context.Context, in CreateClientInput) (Client, error) {
	const op = "identity.CreateClient"

	if err := ctx.Err(); err != nil {
		return Client{}, err
	}
	in, err := normalizedInput(op, in)
	if err != nil {
		return Client{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if in.Phone != nil {
		if _, taken := s.byPhone[*in.Phone]; taken {
			return Client{}, ConflictError{Op: op, Field: "phone"}
		}
	}
	if in.Email != nil {
		if _, taken := s.byEmail[*in.Email]; taken {
			return Client{}, ConflictError{Op: op, Field: "email"}
		}
	}

	s.nextID++
	c := Client{
		ID:           s.nextID,
		Phone:        in.Phone,
		Email:        in.Email,
		PasswordHash: in.PasswordHash,
		Name:         in.Name,
		FullName:     in.FullName,
		Role:         in.Role,
		CreatedAt:    in.Now.UTC(),
	}
	s.byID[c.ID] = c
	if c.Phone != nil {
		s.byPhone[*c.Phone] = c.ID
	}
	if c.Email != nil {
		s.byEmail[*c.Email] = c.ID
	}
	return c, nil
}

// FindByLoginKey resolves a phone number or email address.
func (s *MemoryStore) FindByLoginKey(ctx context.Context, key string) (Client, error) {
	const op = "identity.FindByLoginKey"

	if err := ctx.Err(); err != nil {
		return Client{}, err
	}
	kind, norm := ParseLoginKey(key)
	if norm == "" {
		return Client{}, notFound(op)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	index := s.byPhone
	if kind == LoginKeyEmail {
		index = s.byEmail
	}
	id, ok := index[norm]
	if !ok {
		return Client{}, notFound(op)
	}
	return s.byID[id], nil
}

// FindByID loads a client by id.
func (s *MemoryStore) FindByID(ctx context.Context, id int64) (Client, error) {
	const op = "identity.FindByID"

	if err := ctx.Err(); err != nil {
		return Client{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.byID[id]
	if !ok {
		return Client{}, notFound(op)
	}
	return c, nil
}

// Delete removes a client. Tokens issued to it stop authenticating on the next lookup.
func (s *MemoryStore) Delete(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.byID[id]
	if !ok {
		return false
	}
	delete(s.byID, id)
	if c.Phone != nil {
		delete(s.byPhone, *c.Phone)
	}
	if c.Email != nil {
		delete(s.byEmail, *c.Email)
	}
	return true
}
