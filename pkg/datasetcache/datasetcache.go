// Package datasetcache implements the C4 Dataset Cache: a TTL-bound
// key/value wrapper around pkg/cache that persists a computed
// domain.Dataset, per spec.md §4.4. Grounded directly on the teacher's
// pkg/cache (Cache interface, Options, graceful-degradation contract);
// this package adds only the Dataset-shaped Get/Set/Invalidate/Exists
// surface and the "never propagate a cache error" rule spec.md §4.4
// requires, reusing the teacher's existing backend implementations
// verbatim.
package datasetcache

import (
	"context"
	"encoding/json"
	"time"

	"google.golang.org/protobuf/types/known/timestamppb"

	"transit/pkg/cache"
	"transit/pkg/domain"
	"transit/pkg/logger"
)

// wireDataset is the on-wire shape of a cached Dataset: timestamps are
// carried as protobuf well-known Timestamps so they round-trip through
// JSON without timezone drift, matching the teacher's use of
// timestamppb for its own audit timestamps.
type wireDataset struct {
	ID          string          `json:"id"`
	ContentHash string          `json:"content_hash"`
	Mode        domain.DatasetMode `json:"mode"`
	Quality     float64         `json:"quality"`
	Stops       []domain.Stop   `json:"stops"`
	Routes      []domain.Route  `json:"routes"`
	Flights     []domain.Flight `json:"flights"`
	FetchedAt   *timestamppb.Timestamp `json:"fetched_at"`
	CreatedAt   *timestamppb.Timestamp `json:"created_at"`
}

func toWire(d domain.Dataset) wireDataset {
	return wireDataset{
		ID:          d.ID,
		ContentHash: d.ContentHash,
		Mode:        d.Mode,
		Quality:     d.Quality,
		Stops:       d.Stops,
		Routes:      d.Routes,
		Flights:     d.Flights,
		FetchedAt:   timestamppb.New(d.FetchedAt),
		CreatedAt:   timestamppb.New(d.CreatedAt),
	}
}

func (w wireDataset) toDataset() domain.Dataset {
	d := domain.Dataset{
		ID:          w.ID,
		ContentHash: w.ContentHash,
		Mode:        w.Mode,
		Quality:     w.Quality,
		Stops:       w.Stops,
		Routes:      w.Routes,
		Flights:     w.Flights,
	}
	if w.FetchedAt != nil {
		d.FetchedAt = w.FetchedAt.AsTime()
	}
	if w.CreatedAt != nil {
		d.CreatedAt = w.CreatedAt.AsTime()
	}
	return d
}

// Cache is the C4 contract: get/set/invalidate/exists over a single
// logical dataset key. Every operation degrades gracefully — a backing
// store failure is logged at warn and surfaces as a null result, never
// as an error, per spec.md §4.4.
type Cache struct {
	backend cache.Cache
	enabled bool
	key     string
}

// New wraps backend (nil-safe: a nil backend behaves as if disabled).
// enabled is the feature flag from config.CacheConfig.Enabled; when
// false, the cache is entirely bypassed (every Get misses, every Set is
// a no-op), matching spec.md §4.4's "a feature flag disables the cache
// entirely".
func New(backend cache.Cache, enabled bool, key string) *Cache {
	return &Cache{backend: backend, enabled: enabled, key: key}
}

// Key returns the configured cache key (spec.md §6's
// "transport-dataset:<key>").
func (c *Cache) Key() string { return c.key }

// Get retrieves the cached Dataset, if any. Any backend error or
// disabled cache yields (zero, false) without an error.
func (c *Cache) Get(ctx context.Context) (domain.Dataset, bool) {
	if c == nil || !c.enabled || c.backend == nil {
		return domain.Dataset{}, false
	}

	raw, err := c.backend.Get(ctx, c.key)
	if err != nil {
		if err != cache.ErrKeyNotFound {
			logger.Warn("dataset cache get failed, treating as miss", "key", c.key, "error", err)
		}
		return domain.Dataset{}, false
	}

	var w wireDataset
	if err := json.Unmarshal(raw, &w); err != nil {
		logger.Warn("dataset cache entry corrupt, treating as miss", "key", c.key, "error", err)
		return domain.Dataset{}, false
	}
	return w.toDataset(), true
}

// Set stores d under the configured key with the given TTL. Failures
// are logged and swallowed.
func (c *Cache) Set(ctx context.Context, d domain.Dataset, ttl time.Duration) {
	if c == nil || !c.enabled || c.backend == nil {
		return
	}

	raw, err := json.Marshal(toWire(d))
	if err != nil {
		logger.Warn("dataset cache marshal failed, skipping set", "key", c.key, "error", err)
		return
	}

	if err := c.backend.Set(ctx, c.key, raw, ttl); err != nil {
		logger.Warn("dataset cache set failed", "key", c.key, "error", err)
	}
}

// Invalidate drops the cached dataset, if present. Failures are logged
// and swallowed — spec.md §4.5's orchestrator relies on this being a
// best-effort call at the start of every load.
func (c *Cache) Invalidate(ctx context.Context) {
	if c == nil || !c.enabled || c.backend == nil {
		return
	}
	if err := c.backend.Delete(ctx, c.key); err != nil {
		logger.Warn("dataset cache invalidate failed", "key", c.key, "error", err)
	}
}

// Exists reports whether a dataset is currently cached. A backend
// failure is treated as "not present".
func (c *Cache) Exists(ctx context.Context) bool {
	if c == nil || !c.enabled || c.backend == nil {
		return false
	}
	ok, err := c.backend.Exists(ctx, c.key)
	if err != nil {
		logger.Warn("dataset cache exists check failed", "key", c.key, "error", err)
		return false
	}
	return ok
}
