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

// Cache key prefixes and default TTLs for prerendered detail pages.
const (
	prerenderKeyPrefix = "prerender:home:"
	negCacheKeySuffix  = ":neg"

	// DefaultSnapshotTTL bounds cross-process staleness of a built page.
	DefaultSnapshotTTL = 24 * time.Hour

	// NegativeCacheTTL is the TTL for ids that resolved to a redirect.
	NegativeCacheTTL = 5 * time.Minute
)

// SnapshotStore persists prerendered home snapshots so a restarted
// process can serve pages built elsewhere. Implemented by Cache.
type SnapshotStore struct {
	cache       *Cache
	snapshotTTL time.Duration
	negativeTTL time.Duration
}

// NewSnapshotStore wraps the cache with prerender snapshot methods.
// Zero TTLs fall back to the defaults.
func NewSnapshotStore(c *Cache, snapshotTTL, negativeTTL time.Duration) *SnapshotStore {
	if snapshotTTL <= 0 {
		snapshotTTL = DefaultSnapshotTTL
	}
	if negativeTTL <= 0 {
		negativeTTL = NegativeCacheTTL
	}
	return &SnapshotStore{
		cache:       c,
		snapshotTTL: snapshotTTL,
		negativeTTL: negativeTTL,
	}
}

// GetSnapshot retrieves a prerendered home snapshot.
// Returns ErrCacheMiss if no snapshot exists.
func (s *SnapshotStore) GetSnapshot(ctx context.Context, id string) (*model.Home, error) {
	key := prerenderKeyPrefix + id

	data, err := s.cache.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var home model.Home
	if err := json.Unmarshal(data, &home); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}

	return &home, nil
}

// SetSnapshot stores a prerendered home snapshot and clears any
// negative entry for the id.
func (s *SnapshotStore) SetSnapshot(ctx context.Context, id string, home *model.Home) error {
	key := prerenderKeyPrefix + id

	data, err := json.Marshal(home)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	pipe := s.cache.client.Pipeline()
	pipe.Set(ctx, key, data, s.snapshotTTL)
	pipe.Del(ctx, key+negCacheKeySuffix)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to cache snapshot: %w", err)
	}

	return nil
}

// DeleteSnapshot invalidates the snapshot and negative entry for an id.
func (s *SnapshotStore) DeleteSnapshot(ctx context.Context, id string) error {
	key := prerenderKeyPrefix + id

	pipe := s.cache.client.Pipeline()
	pipe.Del(ctx, key)
	pipe.Del(ctx, key+negCacheKeySuffix)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}

	return nil
}

// IsNegativelyCached checks whether an id recently resolved to no record.
func (s *SnapshotStore) IsNegativelyCached(ctx context.Context, id string) (bool, error) {
	key := prerenderKeyPrefix + id + negCacheKeySuffix

	exists, err := s.cache.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check negative cache: %w", err)
	}

	return exists > 0, nil
}

// SetNegativeCache marks an id as having no record, for NegativeCacheTTL.
func (s *SnapshotStore) SetNegativeCache(ctx context.Context, id string) error {
	key := prerenderKeyPrefix + id + negCacheKeySuffix

	if err := s.cache.client.SetEx(ctx, key, "", s.negativeTTL).Err(); err != nil {
		return fmt.Errorf("failed to set negative cache: %w", err)
	}

	return nil
}
