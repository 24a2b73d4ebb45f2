package catalog

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/couchcryptid/neo-impact-service/internal/observability"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"
)

const flightKey = "catalog"

// loadTimeout bounds one shared upstream load.
const loadTimeout = 30 * time.Second

// Cache wraps a Source with a time-bounded in-memory copy. Concurrent misses
// share one upstream load. When a refresh fails the previous copy is served.
type Cache struct {
	inner   Source
	ttl     time.Duration
	clock   clockwork.Clock
	logger  *slog.Logger
	metrics *observability.Metrics
	flight  singleflight.Group

	mu       sync.RWMutex
	entries  []Asteroid
	loadedAt time.Time
	loaded   bool
}

// NewCache creates a cache decorator around a source. A nil clock uses real time.
func NewCache(inner Source, ttl time.Duration, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Cache {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Cache{
		inner:   inner,
		ttl:     ttl,
		clock:   clock,
		logger:  logger,
		metrics: metrics,
	}
}

func (c *Cache) Name() string { return "cache" }

// Asteroids returns the cached catalog, reloading it once the TTL has passed.
// Callers must not modify the returned slice.
func (c *Cache) Asteroids(ctx context.Context) ([]Asteroid, error) {
	if list, ok := c.fresh(); ok {
		c.metrics.CatalogCache.WithLabelValues("hit").Inc()
		return list, nil
	}
	c.metrics.CatalogCache.WithLabelValues("miss").Inc()

	// The shared load outlives any single caller; each caller only stops
	// waiting when its own context ends.
	ch := c.flight.DoChan(flightKey, func() (any, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()
		list, err := c.inner.Asteroids(loadCtx)
		if err != nil {
			return nil, err
		}
		c.store(list)
		return list, nil
	})

	var err error
	select {
	case res := <-ch:
		if res.Err == nil {
			return res.Val.([]Asteroid), nil
		}
		err = res.Err
	case <-ctx.Done():
		err = ctx.Err()
	}

	if stale, ok := c.stale(); ok {
		c.logger.Warn("catalog refresh failed, serving stale copy", "error", err)
		c.metrics.CatalogCache.WithLabelValues("stale").Inc()
		return stale, nil
	}
	return nil, err
}

// CheckReadiness reports whether the catalog has been loaded at least once.
func (c *Cache) CheckReadiness(_ context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.loaded {
		return errors.New("asteroid catalog has not been loaded yet")
	}
	return nil
}

func (c *Cache) fresh() ([]Asteroid, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.loaded || c.clock.Since(c.loadedAt) >= c.ttl {
		return nil, false
	}
	return c.entries, true
}

func (c *Cache) stale() ([]Asteroid, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.entries, c.loaded
}

func (c *Cache) store(list []Asteroid) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = list
	c.loadedAt = c.clock.Now()
	c.loaded = true
}
