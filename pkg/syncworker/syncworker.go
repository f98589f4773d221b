// Package syncworker implements the C11 Sync Worker: a periodic task
// that re-fetches the primary data source, compares its content hash
// against the latest persisted dataset, and upserts only on real
// change, per spec.md §4.11. Grounded on the teacher's
// pkg/audit/client.go processLoop (ticker-driven background loop with
// a minimum-interval guard and per-tick logged outcome), adapted from
// flushing a local buffer to upstream to pulling from upstream and
// persisting locally.
package syncworker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"transit/pkg/datasetstore"
	"transit/pkg/domain"
	"transit/pkg/logger"
	"transit/pkg/providers"
)

// DatasetStore is the persistence collaborator C11 depends on: reading
// the latest content hash and upserting a changed dataset.
type DatasetStore interface {
	LatestHash(ctx context.Context) (string, error)
	Upsert(ctx context.Context, d domain.Dataset) error
}

// Chain is invoked after a successful upsert to signal the next worker
// in the pipeline (spec.md §4.11's "virtual-entities-generator").
type Chain func(ctx context.Context, d domain.Dataset) error

// Config tunes the worker's scheduling.
type Config struct {
	MinInterval time.Duration
}

// DefaultConfig returns spec.md §6's default 1 hour minimum interval.
func DefaultConfig() Config {
	return Config{MinInterval: time.Hour}
}

// RunResult reports the outcome of a single Run call.
type RunResult struct {
	Ran       bool // false when canRun() rejected the attempt
	Changed   bool
	Err       error
	StopCount int
	RouteCount int
}

// Worker runs the periodic sync task.
type Worker struct {
	primary providers.Provider
	store   DatasetStore
	next    Chain
	cfg     Config

	mu      sync.Mutex
	lastRun time.Time
}

// New creates a Worker. next may be nil, in which case a successful
// upsert simply isn't chained further.
func New(primary providers.Provider, store DatasetStore, next Chain, cfg Config) *Worker {
	return &Worker{primary: primary, store: store, next: next, cfg: cfg}
}

// CanRun reports whether enough time has elapsed since the last
// successful or attempted run to permit another one now.
func (w *Worker) CanRun(now time.Time) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.lastRun.IsZero() {
		return true
	}
	return now.Sub(w.lastRun) >= w.cfg.MinInterval
}

// Run executes one sync attempt, per spec.md §4.11's five steps. It
// does not return an error for "no changes" — that is success with
// RunResult.Changed=false.
func (w *Worker) Run(ctx context.Context, now time.Time) RunResult {
	if !w.CanRun(now) {
		return RunResult{Ran: false}
	}

	w.mu.Lock()
	w.lastRun = now
	w.mu.Unlock()

	raw, err := w.primary.Load(ctx)
	if err != nil {
		// Remote-fetch error: report failure, do not touch persistent state.
		logger.Warn("syncworker: primary fetch failed", "error", err)
		return RunResult{Ran: true, Err: fmt.Errorf("syncworker: fetch failed: %w", err)}
	}

	newHash := domain.ContentHash(raw.Stops, raw.Routes, raw.Flights)

	latestHash, err := w.store.LatestHash(ctx)
	if err != nil {
		if !errors.Is(err, datasetstore.ErrNoDataset) {
			// A read failure other than "no dataset yet" is treated the same
			// as a fetch failure: report, don't touch state.
			logger.Warn("syncworker: failed to read latest hash", "error", err)
			return RunResult{Ran: true, Err: fmt.Errorf("syncworker: latest-hash read failed: %w", err)}
		}
		latestHash = ""
	}

	if latestHash == newHash && newHash != "" {
		logger.Info("syncworker: no changes detected")
		return RunResult{Ran: true, Changed: false}
	}

	d := domain.Dataset{
		ContentHash: newHash,
		Stops:       raw.Stops,
		Routes:      raw.Routes,
		Flights:     raw.Flights,
		FetchedAt:   raw.FetchedAt,
		CreatedAt:   now,
	}

	if err := w.store.Upsert(ctx, d); err != nil {
		// Partial batch error: the store's own transaction already rolled
		// back, so persistent state is untouched; just report failure.
		logger.Warn("syncworker: upsert failed, dataset record rolled back", "error", err)
		return RunResult{Ran: true, Err: fmt.Errorf("syncworker: upsert failed: %w", err)}
	}

	logger.Info("syncworker: dataset changed and persisted", "stop_count", len(d.Stops), "route_count", len(d.Routes))

	if w.next != nil {
		if err := w.next(ctx, d); err != nil {
			logger.Warn("syncworker: downstream chain signal failed", "error", err)
		}
	}

	return RunResult{Ran: true, Changed: true, StopCount: len(d.Stops), RouteCount: len(d.Routes)}
}
