// Package orchestrator implements the C5 Data Orchestrator: the single
// public entry point that decides, on every call, whether to serve a
// cached dataset or load, validate, and (if warranted) recover one from
// the configured providers, per spec.md §4.5. Grounded on the teacher's
// services/solver-svc/factory.go request-scoped wiring style (small
// struct holding its collaborators, one public method driving a fixed
// decision tree) and on pkg/audit/client.go's step-by-step
// logged-and-metered pipeline shape.
package orchestrator

import (
	"context"
	"time"

	"github.com/google/uuid"

	"transit/pkg/datasetcache"
	"transit/pkg/domain"
	"transit/pkg/logger"
	"transit/pkg/providers"
	"transit/pkg/quality"
	"transit/pkg/recovery"
	"transit/pkg/telemetry"
)

// Config tunes the orchestrator's cache TTL; the quality thresholds are
// configured on the quality validator instead.
type Config struct {
	CacheTTL time.Duration
}

// DefaultConfig returns spec.md §6's default 5 minute cache TTL.
func DefaultConfig() Config {
	return Config{CacheTTL: 5 * time.Minute}
}

// Orchestrator is the C5 collaborator: a thin coordinator over a
// primary/fallback provider pair, the dataset cache, the quality
// validator, and the recovery service.
type Orchestrator struct {
	primary   providers.Provider
	fallback  providers.Provider
	cache     *datasetcache.Cache
	validator *quality.Validator
	recovery  *recovery.Service
	cfg       Config
}

// New wires an Orchestrator from its collaborators. fallback must never
// be nil: it is both the degraded-data source and the final resort.
func New(primary, fallback providers.Provider, cache *datasetcache.Cache, validator *quality.Validator, rec *recovery.Service, cfg Config) *Orchestrator {
	return &Orchestrator{
		primary:   primary,
		fallback:  fallback,
		cache:     cache,
		validator: validator,
		recovery:  rec,
		cfg:       cfg,
	}
}

// LoadData runs spec.md §4.5's decision tree and returns the resulting
// Dataset. It never returns an error: on total provider failure it
// still returns whatever dataset the fallback and recovery pipeline
// managed to produce, per the partial-failure semantics below.
func (o *Orchestrator) LoadData(ctx context.Context) domain.Dataset {
	ctx, span := telemetry.StartSpan(ctx, "orchestrator.LoadData")
	defer span.End()

	o.cache.Invalidate(ctx)

	if d, ok := o.cache.Get(ctx); ok {
		telemetry.SetAttributes(ctx, telemetry.CacheAttributes(o.cache.Key(), true)...)
		logger.Debug("orchestrator: serving dataset from cache", "dataset_id", d.ID)
		return d
	}
	telemetry.SetAttributes(ctx, telemetry.CacheAttributes(o.cache.Key(), false)...)

	raw := o.fetch(ctx)
	d := toDataset(raw)

	report := o.validator.Validate(d)
	mode := report.Mode
	logger.Info("orchestrator: quality computed", "overall_score", report.OverallScore, "mode", mode)

	switch mode {
	case domain.ModeRecovery:
		recovered, recoveredOK := o.tryRecover(ctx, d)
		if recoveredOK {
			d = recovered
		}
		// Recovery failure: keep the best dataset so far (d, unchanged).

	case domain.ModeMock:
		if o.primary != nil && o.fallback != nil && o.primary.Name() != o.fallback.Name() {
			if fallbackRaw, err := o.fallback.Load(ctx); err == nil {
				d = toDataset(fallbackRaw)
			} else {
				logger.Warn("orchestrator: final-resort fallback failed", "error", err)
			}
		}
		// Still run recovery to create virtual stops/mesh, per spec.md
		// §4.5's "still run recovery" instruction even on the mock path.
		if recovered, ok := o.tryRecover(ctx, d); ok {
			d = recovered
		}
	}

	d.Mode = mode
	d.Quality = o.validator.Validate(d).OverallScore
	d.FetchedAt = time.Now()
	d.CreatedAt = time.Now()
	d.ID = uuid.NewString()
	d.ContentHash = domain.ContentHash(d.Stops, d.Routes, d.Flights)

	telemetry.SetAttributes(ctx, telemetry.DatasetAttributes(string(d.Mode), d.Quality)...)
	o.cache.Set(ctx, d, o.cfg.CacheTTL)
	return d
}

// fetch implements "p <- primary.available() ? primary : fallback; try
// d <- p.load() catch d <- fallback.load()".
func (o *Orchestrator) fetch(ctx context.Context) domain.RawDataset {
	provider := o.fallback
	if o.primary != nil && o.primary.Available(ctx) {
		provider = o.primary
	}

	raw, err := provider.Load(ctx)
	if err == nil {
		return raw
	}

	logger.Warn("orchestrator: provider load failed, falling back", "provider", provider.Name(), "error", err)
	if provider == o.fallback {
		// Already the fallback; nothing else to try but return what we have.
		return raw
	}

	fallbackRaw, fallbackErr := o.fallback.Load(ctx)
	if fallbackErr != nil {
		logger.Warn("orchestrator: fallback provider also failed", "error", fallbackErr)
		return raw
	}
	return fallbackRaw
}

// tryRecover runs the recovery pipeline over d and re-validates the
// result. If the recovered dataset still scores in the mock band, it
// falls back to the fallback provider's raw data once more, per
// spec.md §4.5's "if r'.overall < 50: d <- fallback.load()".
func (o *Orchestrator) tryRecover(ctx context.Context, d domain.Dataset) (domain.Dataset, bool) {
	result := o.recovery.Recover(ctx, d)
	recovered := result.Dataset

	postReport := o.validator.Validate(recovered)

	// "if r'.overall < 50: d <- fallback.load()" — ModeMock is exactly
	// the overall<50 band, so this check is equivalent to the spec's
	// literal threshold comparison.
	if postReport.Mode == domain.ModeMock {
		if fallbackRaw, err := o.fallback.Load(ctx); err == nil {
			return toDataset(fallbackRaw), true
		}
		logger.Warn("orchestrator: recovery produced a still-mock-grade dataset and fallback failed")
		return recovered, true
	}

	return recovered, true
}

func toDataset(raw domain.RawDataset) domain.Dataset {
	return domain.Dataset{
		Stops:     raw.Stops,
		Routes:    raw.Routes,
		Flights:   raw.Flights,
		FetchedAt: raw.FetchedAt,
	}
}
