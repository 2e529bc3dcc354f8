package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Denylist remembers retired refresh tokens by fingerprint until they expire.
type Denylist interface {
	// Revoke records fingerprint for ttl. Recording it twice is not an error.
	Revoke(ctx context.Context, fingerprint string, ttl time.Duration) error
	// Retire records fingerprint for ttl in one atomic step and reports whether
	// it was absent before. Exactly one concurrent caller sees true.
	Retire(ctx context.Context, fingerprint string, ttl time.Duration) (bool, error)
}

// MemoryDenylist is a process-local Denylist. Entries are dropped lazily once expired.
type MemoryDenylist struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

// NewMemoryDenylist constructs an empty MemoryDenylist.
func NewMemoryDenylist() *MemoryDenylist {
	return &MemoryDenylist{
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
}

func (d *MemoryDenylist) Revoke(ctx context.Context, fingerprint string, ttl time.Duration) error {
	_, err := d.Retire(ctx, fingerprint, ttl)
	return err
}

func (d *MemoryDenylist) Retire(ctx context.Context, fingerprint string, ttl time.Duration) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	for k, until := range d.entries {
		if !until.After(now) {
			delete(d.entries, k)
		}
	}
	if _, ok := d.entries[fingerprint]; ok {
		return false, nil
	}
	if ttl > 0 {
		d.entries[fingerprint] = now.Add(ttl)
	}
	return true, nil
}

const redisDenylistPrefix = "stylehub:revoked:"

// RedisDenylist stores revocations as keys with a TTL, so Redis does the expiry.
type RedisDenylist struct {
	rdb redis.Cmdable
}

// NewRedisDenylist wraps a go-redis client (single node, cluster or ring).
func NewRedisDenylist(rdb redis.Cmdable) *RedisDenylist {
	return &RedisDenylist{rdb: rdb}
}

func (d *RedisDenylist) Revoke(ctx context.Context, fingerprint string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := d.rdb.Set(ctx, redisDenylistPrefix+fingerprint, "1", ttl).Err(); err != nil {
		return fmt.Errorf("denylist revoke: %w", err)
	}
	return nil
}

func (d *RedisDenylist) Retire(ctx context.Context, fingerprint string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		return true, nil
	}
	fresh, err := d.rdb.SetNX(ctx, redisDenylistPrefix+fingerprint, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("denylist retire: %w", err)
	}
	return fresh, nil
}
