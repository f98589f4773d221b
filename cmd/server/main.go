// Command server wires up and runs the route-search service: it loads
// configuration, constructs the data pipeline (providers, quality
// validator, recovery, orchestrator), the in-memory graph manager, the
// path finder and risk scorer, and serves them over the fiber HTTP
// boundary documented in spec.md §6. Grounded on
// shivamshaw23-Hintro/cmd/server/main.go's load-config /
// connect-dependencies / build-layers / start-server /
// wait-for-signal / graceful-shutdown structure, adapted from gorilla/mux
// and a ride-matching domain to fiber and this service's route-search
// domain.
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"transit/internal/httpapi"
	"transit/pkg/cache"
	"transit/pkg/config"
	"transit/pkg/database"
	"transit/pkg/datasetcache"
	"transit/pkg/datasetstore"
	"transit/pkg/domain"
	"transit/pkg/graphmanager"
	"transit/pkg/logger"
	"transit/pkg/metrics"
	"transit/pkg/orchestrator"
	"transit/pkg/pathfinder"
	"transit/pkg/providers"
	"transit/pkg/quality"
	"transit/pkg/recovery"
	"transit/pkg/syncworker"
	"transit/pkg/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("config: " + err.Error())
	}

	logger.InitWithConfig(logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		FilePath:   cfg.Log.FilePath,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
	})
	logger.Info("starting server", "app", cfg.App.Name, "version", cfg.App.Version, "environment", cfg.App.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tracerProvider, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:     cfg.Tracing.Enabled,
		Endpoint:    cfg.Tracing.Endpoint,
		ServiceName: cfg.Tracing.ServiceName,
		Version:     cfg.App.Version,
		Environment: cfg.App.Environment,
		SampleRate:  cfg.Tracing.SampleRate,
	})
	if err != nil {
		logger.Fatal("telemetry: init failed", "error", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			logger.Warn("telemetry: shutdown failed", "error", err)
		}
	}()

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.InitMetrics(cfg.Metrics.Namespace, cfg.Metrics.Subsystem)
		m.SetServiceInfo(cfg.App.Version, cfg.App.Environment)
	}

	var db *database.PostgresDB
	var store syncworker.DatasetStore
	if cfg.Database.Driver != "" {
		db, err = database.NewPostgresDB(ctx, &cfg.Database)
		if err != nil {
			logger.Warn("database: connection failed, sync worker persistence disabled", "error", err)
		} else {
			defer db.Close()
			store = datasetstore.New(db)
		}
	}

	var cacheBackend cache.Cache
	if cfg.Cache.Enabled {
		cacheBackend, err = cache.New(cache.FromConfig(&cfg.Cache))
		if err != nil {
			logger.Fatal("cache: init failed", "error", err)
		}
	} else {
		cacheBackend, err = cache.New(cache.DefaultOptions())
		if err != nil {
			logger.Fatal("cache: fallback memory cache init failed", "error", err)
		}
	}
	defer cacheBackend.Close()

	primary := providers.NewPrimaryProvider(cfg.DataSource.PrimaryBaseURL, &http.Client{Timeout: 10 * time.Second})
	fallback := providers.NewFallbackProvider(cfg.DataSource.FallbackDir)

	validator := quality.New(quality.ThresholdsFromConfig(cfg.Quality.ThresholdReal, cfg.Quality.ThresholdRecovery))

	hub := domain.Coordinates{Lat: cfg.Region.CenterLat, Lon: cfg.Region.CenterLon}
	recoveryService := recovery.New(recovery.Config{
		RegionCenter:        hub,
		HubCityName:         cfg.Region.HubCityName,
		HubCoordinates:      hub,
		MaxVirtualMeshNodes: cfg.Recovery.MaxVirtualMeshNodes,
	})

	datasetCache := datasetcache.New(cacheBackend, cfg.Cache.Enabled, cfg.Cache.Key)

	orch := orchestrator.New(primary, fallback, datasetCache, validator, recoveryService, orchestrator.Config{
		CacheTTL: cfg.Cache.TTL,
	})

	gm := graphmanager.New(orch)

	finder := pathfinder.New(pathfinder.WithKAlternatives(cfg.Search.KAlternatives))

	searchTimeout := time.Duration(cfg.Search.TimeoutMS) * time.Millisecond
	if searchTimeout <= 0 {
		searchTimeout = 30 * time.Second
	}

	// db and cacheBackend are only passed through as health-check
	// collaborators when actually configured, so a disabled dependency
	// reports as absent rather than as a nil-pointer health failure.
	var dbHealth dbHealthChecker
	if db != nil {
		dbHealth = db
	}
	var cacheHealth cacheHealthChecker
	if cfg.Cache.Enabled {
		cacheHealth = cacheBackend
	}

	h := httpapi.NewHandler(gm, finder, searchTimeout, dbHealth, cacheHealth)
	app := httpapi.NewServer(h, cfg.HTTP, m)

	if store != nil && cfg.SyncWorker.IntervalSeconds > 0 {
		startSyncWorker(ctx, primary, store, gm, time.Duration(cfg.SyncWorker.IntervalSeconds)*time.Second)
	}

	go func() {
		addr := ":" + strconv.Itoa(cfg.HTTP.Port)
		logger.Info("http: listening", "addr", addr)
		if err := app.Listen(addr); err != nil {
			logger.Error("http: server stopped", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown: signal received, draining in-flight requests")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("shutdown: fiber app shutdown failed", "error", err)
	}
	logger.Info("shutdown: complete")
}

// dbHealthChecker and cacheHealthChecker mirror the unexported
// interfaces internal/httpapi.NewHandler accepts; Go's structural
// typing lets values of these local types satisfy the target
// package's parameter types without exporting anything there.
type dbHealthChecker interface {
	HealthCheck(ctx context.Context) error
}

type cacheHealthChecker interface {
	Stats(ctx context.Context) (*cache.Stats, error)
}

// startSyncWorker runs the C11 background re-sync on a ticker, chaining
// into a graph rebuild whenever the upstream content hash changes, per
// spec.md §4.11.
func startSyncWorker(ctx context.Context, primary providers.Provider, store syncworker.DatasetStore, gm *graphmanager.Manager, interval time.Duration) {
	chain := func(chainCtx context.Context, _ domain.Dataset) error {
		return gm.UpdateGraph(chainCtx)
	}
	worker := syncworker.New(primary, store, chain, syncworker.Config{MinInterval: interval})

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				result := worker.Run(ctx, now)
				if result.Err != nil && !errors.Is(result.Err, context.Canceled) {
					logger.Warn("syncworker: run failed", "error", result.Err)
				}
			}
		}
	}()
}
