package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/homelet/homelet/internal/model"
)

const (
	// identityCachePrefix is the Redis key prefix for resolved identities.
	identityCachePrefix = "session:ident:"

	// DefaultIdentityTTL bounds how long a revoked session can keep
	// resolving from cache.
	DefaultIdentityTTL = 5 * time.Minute
)

// IdentityStore caches resolved identities keyed by token fingerprint.
type IdentityStore struct {
	cache *Cache
	ttl   time.Duration
}

// NewIdentityStore wraps the cache with identity caching methods.
// A zero TTL falls back to DefaultIdentityTTL.
func NewIdentityStore(c *Cache, ttl time.Duration) *IdentityStore {
	if ttl <= 0 {
		ttl = DefaultIdentityTTL
	}
	return &IdentityStore{cache: c, ttl: ttl}
}

// GetIdentity retrieves a cached identity by token fingerprint.
// Returns (nil, nil) on a cache miss.
func (s *IdentityStore) GetIdentity(ctx context.Context, fingerprint string) (*model.Identity, error) {
	key := identityCachePrefix + fingerprint

	data, err := s.cache.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var ident model.Identity
	if err := json.Unmarshal(data, &ident); err != nil {
		return nil, fmt.Errorf("failed to unmarshal identity: %w", err)
	}

	return &ident, nil
}

// SetIdentity caches a resolved identity keyed by token fingerprint.
func (s *IdentityStore) SetIdentity(ctx context.Context, fingerprint string, ident *model.Identity) error {
	key := identityCachePrefix + fingerprint

	data, err := json.Marshal(ident)
	if err != nil {
		return fmt.Errorf("failed to marshal identity: %w", err)
	}

	if err := s.cache.client.Set(ctx, key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache identity: %w", err)
	}

	return nil
}

// DeleteIdentity evicts a cached identity (sign-out path).
func (s *IdentityStore) DeleteIdentity(ctx context.Context, fingerprint string) error {
	key := identityCachePrefix + fingerprint

	if err := s.cache.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete cached identity: %w", err)
	}

	return nil
}
