package identity

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestMemoryStore_CreateAndFind(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

	c, err := st.CreateClient(ctx, CreateClientInput{
		Phone:        strPtr("+998 90 123 45 67"),
		Email:        strPtr("Client@Example.com"),
		PasswordHash: "$argon2id$stub",
		FullName:     strPtr("Anvar Karimov"),
		Now:          now,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), c.ID)
	assert.Equal(t, "+998901234567", *c.Phone)
	assert.Equal(t, "client@example.com", *c.Email)
	assert.Equal(t, now, c.CreatedAt)
	assert.Equal(t, "+998901234567", c.LoginKey())

	byPhone, err := st.FindByLoginKey(ctx, "+998-90-123-45-67")
	require.NoError(t, err)
	assert.Equal(t, c.ID, byPhone.ID)

	byEmail, err := st.FindByLoginKey(ctx, "CLIENT@example.com")
	require.NoError(t, err)
	assert.Equal(t, c.ID, byEmail.ID)

	byID, err := st.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "$argon2id$stub", byID.PasswordHash)
}

func TestMemoryStore_NotFound(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	_, err := st.FindByLoginKey(ctx, "+999")
	assert.True(t, IsNotFound(err))

	_, err = st.FindByID(ctx, 42)
	assert.True(t, IsNotFound(err))
}

func TestMemoryStore_InvalidInput(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	_, err := st.CreateClient(ctx, CreateClientInput{PasswordHash: "x"})
	assert.True(t, IsInvalidInput(err))

	_, err = st.CreateClient(ctx, CreateClientInput{Phone: strPtr("+1555")})
	assert.True(t, IsInvalidInput(err))

	for _, in := range []CreateClientInput{
		{Phone: strPtr("---"), PasswordHash: "x"},
		{Phone: strPtr("+1555@x"), PasswordHash: "x"},
		{Email: strPtr("not-an-email"), PasswordHash: "x"},
	} {
		_, err = st.CreateClient(ctx, in)
		assert.True(t, IsInvalidInput(err), "input %+v", in)
	}

	_, err = st.FindByLoginKey(ctx, "()")
	assert.True(t, IsNotFound(err))
}

func TestMemoryStore_UniqueLoginKeys(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	_, err := st.CreateClient(ctx, CreateClientInput{Phone: strPtr("+1555"), Email: strPtr("a@b.c"), PasswordHash: "h"})
	require.NoError(t, err)

	_, err = st.CreateClient(ctx, CreateClientInput{Phone: strPtr("+1 555"), PasswordHash: "h"})
	require.Error(t, err)
	assert.True(t, IsConflict(err))
	assert.Equal(t, "phone", ConflictField(err))

	_, err = st.CreateClient(ctx, CreateClientInput{Phone: strPtr("+1666"), Email: strPtr("A@B.C"), PasswordHash: "h"})
	assert.Equal(t, "email", ConflictField(err))
}

func TestMemoryStore_ConcurrentRegistrationSameKey(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	const workers = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		created   int
		conflicts int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := st.CreateClient(ctx, CreateClientInput{Phone: strPtr("+998900000000"), PasswordHash: "h"})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				created++
			} else if IsConflict(err) {
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	assert.Equal(t, workers-1, conflicts)
}

func TestMemoryStore_Delete(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	c, err := st.CreateClient(ctx, CreateClientInput{Phone: strPtr("+1555"), PasswordHash: "h"})
	require.NoError(t, err)

	assert.True(t, st.Delete(c.ID))
	assert.False(t, st.Delete(c.ID))

	_, err = st.FindByID(ctx, c.ID)
	assert.True(t, IsNotFound(err))
	_, err = st.FindByLoginKey(ctx, "+1555")
	assert.True(t, IsNotFound(err))

	// The phone is free again.
	_, err = st.CreateClient(ctx, CreateClientInput{Phone: strPtr("+1555"), PasswordHash: "h"})
	assert.NoError(t, err)
}
