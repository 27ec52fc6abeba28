package render

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/homelet/homelet/internal/cache"
	"github.com/homelet/homelet/internal/metrics"
	"github.com/homelet/homelet/internal/model"
)

// State is the lifecycle state of a prerender entry.
type State int

const (
	// StateAbsent means the id has never been built (or was invalidated).
	StateAbsent State = iota
	// StateBuilding means one request is building the page right now.
	StateBuilding
	// StateReady means the page is cached and served without a build.
	StateReady
)

// BuildFunc fetches the data for one detail page. A missing record is
// (nil, false, nil); errors are transient and leave the entry absent
// so a later request retries.
type BuildFunc func(ctx context.Context) (*model.Home, bool, error)

// Snapshots persists built pages across processes. All methods may be
// backed by Redis; a nil Snapshots keeps the cache purely in-process.
type Snapshots interface {
	GetSnapshot(ctx context.Context, id string) (*model.Home, error)
	SetSnapshot(ctx context.Context, id string, home *model.Home) error
	DeleteSnapshot(ctx context.Context, id string) error
	IsNegativelyCached(ctx context.Context, id string) (bool, error)
	SetNegativeCache(ctx context.Context, id string) error
}

// entry tracks one id through absent -> building -> ready.
type entry struct {
	state       State
	home        *model.Home
	found       bool
	err         error
	invalidated bool
	done        chan struct{}
}

// Cache is the prerender cache for detail pages. The first request for
// an absent id performs the build; concurrent requests for the same id
// wait on that single build. Ready entries are served until explicitly
// invalidated by a mutation.
type Cache struct {
	mu        sync.Mutex
	entries   map[string]*entry
	snapshots Snapshots
	metrics   metrics.Recorder
	logger    *slog.Logger
}

// NewCache creates a prerender cache. snapshots may be nil.
func NewCache(snapshots Snapshots, recorder metrics.Recorder, logger *slog.Logger) *Cache {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		entries:   make(map[string]*entry),
		snapshots: snapshots,
		metrics:   recorder,
		logger:    logger,
	}
}

// Resolve returns the page data for id, building it if needed.
// The cached return is true when the data came from a ready entry or a
// persisted snapshot rather than a fresh build.
func (c *Cache) Resolve(ctx context.Context, id string, build BuildFunc) (home *model.Home, found bool, cached bool, err error) {
	c.mu.Lock()
	e, ok := c.entries[id]
	if ok {
		switch e.state {
		case StateReady:
			c.mu.Unlock()
			c.metrics.IncPrerenderHit()
			return e.home, e.found, true, nil
		case StateBuilding:
			c.mu.Unlock()
			select {
			case <-ctx.Done():
				return nil, false, false, ctx.Err()
			case <-e.done:
			}
			if e.err != nil {
				return nil, false, false, e.err
			}
			c.metrics.IncPrerenderHit()
			return e.home, e.found, true, nil
		}
	}

	e = &entry{state: StateBuilding, done: make(chan struct{})}
	c.entries[id] = e
	c.mu.Unlock()

	c.metrics.IncPrerenderMiss()

	home, found, fromSnapshot, err := c.build(ctx, id, build)
	c.finish(id, e, home, found, err)

	return home, found, fromSnapshot, err
}

// build consults the persisted snapshot layer first, then the builder.
// fromSnapshot reports that the data was served from a persisted
// snapshot without running the builder.
func (c *Cache) build(ctx context.Context, id string, build BuildFunc) (home *model.Home, found, fromSnapshot bool, err error) {
	if c.snapshots != nil {
		if neg, err := c.snapshots.IsNegativelyCached(ctx, id); err == nil && neg {
			return nil, false, true, nil
		}

		snapshot, err := c.snapshots.GetSnapshot(ctx, id)
		if err == nil {
			return snapshot, true, true, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			c.logger.Warn("snapshot lookup failed", "home_id", id, "error", err)
		}
	}

	c.metrics.IncPrerenderBuild()
	start := time.Now()
	home, found, err = build(ctx)
	c.metrics.ObserveBuildDuration(time.Since(start))

	if err != nil {
		return nil, false, false, err
	}

	if c.snapshots != nil {
		if !found {
			if err := c.snapshots.SetNegativeCache(ctx, id); err != nil {
				c.logger.Warn("negative cache write failed", "home_id", id, "error", err)
			}
		} else if err := c.snapshots.SetSnapshot(ctx, id, home); err != nil {
			c.logger.Warn("snapshot write failed", "home_id", id, "error", err)
		}
	}

	return home, found, false, nil
}

// finish publishes the build outcome and wakes waiters. Only a
// successful build of an existing record stays resident: misses and
// errors leave the entry absent so the id can be retried, and a build
// that raced an invalidation is discarded.
func (c *Cache) finish(id string, e *entry, home *model.Home, found bool, err error) {
	c.mu.Lock()
	e.home = home
	e.found = found
	e.err = err
	if err == nil && found && !e.invalidated {
		e.state = StateReady
	} else {
		delete(c.entries, id)
	}
	close(e.done)
	c.mu.Unlock()
}

// Invalidate evicts the entry and its persisted snapshot for an id.
// Called after every update or delete of the listing.
func (c *Cache) Invalidate(ctx context.Context, id string) {
	c.mu.Lock()
	if e, ok := c.entries[id]; ok {
		if e.state == StateBuilding {
			e.invalidated = true
		} else {
			delete(c.entries, id)
		}
	}
	c.mu.Unlock()

	if c.snapshots != nil {
		if err := c.snapshots.DeleteSnapshot(ctx, id); err != nil {
			c.logger.Warn("snapshot invalidation failed", "home_id", id, "error", err)
		}
	}
}

// StateOf reports the current state of an id.
func (c *Cache) StateOf(id string) State {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[id]
	if !ok {
		return StateAbsent
	}
	return e.state
}

// Len returns the number of resident entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
