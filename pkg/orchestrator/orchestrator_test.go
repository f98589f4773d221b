package orchestrator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transit/pkg/cache"
	"transit/pkg/datasetcache"
	"transit/pkg/domain"
	"transit/pkg/quality"
	"transit/pkg/recovery"
)

type fakeProvider struct {
	name      string
	available bool
	dataset   domain.RawDataset
	err       error
}

func (f *fakeProvider) Name() string                            { return f.name }
func (f *fakeProvider) Available(ctx context.Context) bool      { return f.available }
func (f *fakeProvider) Load(ctx context.Context) (domain.RawDataset, error) {
	if f.err != nil {
		return domain.RawDataset{}, f.err
	}
	return f.dataset, nil
}

func goodStops(n int) []domain.Stop {
	stops := make([]domain.Stop, n)
	for i := 0; i < n; i++ {
		stops[i] = domain.Stop{
			ID:          "s" + string(rune('a'+i)),
			Name:        "Stop " + string(rune('A'+i)),
			City:        "якутск",
			Coordinates: domain.Coordinates{Lat: 62.0, Lon: 129.7},
			Transport:   domain.TransportBus,
		}
	}
	return stops
}

func goodRoutes(stops []domain.Stop) []domain.Route {
	var routes []domain.Route
	for i := 0; i+1 < len(stops); i++ {
		routes = append(routes, domain.Route{
			ID:         "r" + string(rune('a'+i)),
			FromStopID: stops[i].ID,
			ToStopID:   stops[i+1].ID,
			Transport:  domain.TransportBus,
			Duration:   45 * time.Minute,
		})
	}
	return routes
}

func newOrchestrator(t *testing.T, primary, fallback *fakeProvider) *Orchestrator {
	t.Helper()
	backend := cache.NewMemoryCache(&cache.Options{DefaultTTL: time.Minute, MaxEntries: 100})
	dc := datasetcache.New(backend, true, "transport-dataset:current")
	validator := quality.New(quality.DefaultThresholds())
	rec := recovery.New(recovery.DefaultConfig())
	return New(primary, fallback, dc, validator, rec, DefaultConfig())
}

func TestLoadData_HighQualityPrimaryYieldsRealMode(t *testing.T) {
	stops := goodStops(6)
	routes := goodRoutes(stops)
	primary := &fakeProvider{name: "primary", available: true, dataset: domain.RawDataset{Stops: stops, Routes: routes}}
	fallback := &fakeProvider{name: "fallback", available: true}

	o := newOrchestrator(t, primary, fallback)
	d := o.LoadData(context.Background())

	assert.NotEmpty(t, d.ID)
	assert.NotEmpty(t, d.ContentHash)
	assert.NotZero(t, d.Quality)
	assert.Equal(t, domain.ModeReal, d.Mode)
}

func TestLoadData_CacheHitSkipsProviders(t *testing.T) {
	stops := goodStops(6)
	routes := goodRoutes(stops)
	primary := &fakeProvider{name: "primary", available: true, dataset: domain.RawDataset{Stops: stops, Routes: routes}}
	fallback := &fakeProvider{name: "fallback", available: true}

	o := newOrchestrator(t, primary, fallback)
	first := o.LoadData(context.Background())

	// Second call should hit the cache; verify by making the primary
	// unavailable and erroring, which would otherwise change the result.
	primary.available = false
	primary.err = errors.New("should not be called")
	second := o.LoadData(context.Background())

	assert.Equal(t, first.ID, second.ID)
}

func TestLoadData_PrimaryFailureFallsBackWithoutPanic(t *testing.T) {
	stops := goodStops(6)
	routes := goodRoutes(stops)
	primary := &fakeProvider{name: "primary", available: true, err: errors.New("connection refused")}
	fallback := &fakeProvider{name: "fallback", available: true, dataset: domain.RawDataset{Stops: stops, Routes: routes}}

	o := newOrchestrator(t, primary, fallback)
	d := o.LoadData(context.Background())

	require.NotEmpty(t, d.Stops)
}

func TestLoadData_EmptyDatasetTriggersRecoveryOrMock(t *testing.T) {
	primary := &fakeProvider{name: "primary", available: true, dataset: domain.RawDataset{}}
	fallback := &fakeProvider{name: "fallback", available: true, dataset: domain.RawDataset{}}

	o := newOrchestrator(t, primary, fallback)
	d := o.LoadData(context.Background())

	assert.NotEqual(t, domain.ModeReal, d.Mode)
}
