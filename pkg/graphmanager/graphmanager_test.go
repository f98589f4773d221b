package graphmanager

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transit/pkg/domain"
)

type fakeLoader struct {
	mu      sync.Mutex
	calls   int
	dataset domain.Dataset
}

func (f *fakeLoader) LoadData(ctx context.Context) domain.Dataset {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return f.dataset
}

func sampleDataset() domain.Dataset {
	stops := []domain.Stop{
		{ID: "yak-bus", Name: "Yakutsk bus station", City: "якутск", Coordinates: domain.Coordinates{Lat: 62.0, Lon: 129.7}, Transport: domain.TransportBus},
		{ID: "olek-bus", Name: "Olyokminsk bus station", City: "олёкминск", Coordinates: domain.Coordinates{Lat: 60.4, Lon: 120.4}, Transport: domain.TransportBus},
	}
	routes := []domain.Route{
		{ID: "r1", FromStopID: "yak-bus", ToStopID: "olek-bus", Transport: domain.TransportBus, Duration: 240 * time.Minute},
		{ID: "r2", FromStopID: "olek-bus", ToStopID: "yak-bus", Transport: domain.TransportBus, Duration: 240 * time.Minute},
	}
	return domain.Dataset{Stops: stops, Routes: routes}
}

func TestGetGraph_InitializesOnFirstCall(t *testing.T) {
	loader := &fakeLoader{dataset: sampleDataset()}
	m := New(loader)

	g, err := m.GetGraph(context.Background())
	require.NoError(t, err)
	require.NotNil(t, g)
	assert.Equal(t, domain.GraphReady, m.Stats().State)
}

func TestGetGraph_ConcurrentCallersCollapseToOneInit(t *testing.T) {
	loader := &fakeLoader{dataset: sampleDataset()}
	m := New(loader)

	var wg sync.WaitGroup
	errs := make([]error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			_, errs[idx] = m.GetGraph(context.Background())
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	loader.mu.Lock()
	defer loader.mu.Unlock()
	assert.Equal(t, 1, loader.calls, "dataset should be loaded exactly once despite concurrent GetGraph calls")
}

func TestUpdateGraph_RebuildsAndStaysReady(t *testing.T) {
	loader := &fakeLoader{dataset: sampleDataset()}
	m := New(loader)

	_, err := m.GetGraph(context.Background())
	require.NoError(t, err)

	err = m.UpdateGraph(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.GraphReady, m.Stats().State)
}

func TestStats_ReportsNodeAndEdgeCounts(t *testing.T) {
	loader := &fakeLoader{dataset: sampleDataset()}
	m := New(loader)

	_, err := m.GetGraph(context.Background())
	require.NoError(t, err)

	stats := m.Stats()
	assert.Equal(t, 2, stats.NodeCount)
	assert.True(t, stats.EdgeCount >= 2)
}

func TestStripStaleVirtualStops_RemovesMismatchedID(t *testing.T) {
	d := domain.Dataset{
		Stops: []domain.Stop{
			{ID: "virtual-stop-wrong-id", City: "якутск", IsVirtual: true},
			{ID: domain.VirtualStopID("якутск"), City: "якутск", IsVirtual: true},
		},
	}
	out := stripStaleVirtualStops(d)
	require.Len(t, out.Stops, 1)
	assert.Equal(t, domain.VirtualStopID("якутск"), out.Stops[0].ID)
}

func TestStripDanglingRoutesAndFlights_DropsOrphans(t *testing.T) {
	d := domain.Dataset{
		Stops: []domain.Stop{{ID: "a"}},
		Routes: []domain.Route{
			{ID: "r1", FromStopID: "a", ToStopID: "missing"},
		},
		Flights: []domain.Flight{
			{Route: domain.Route{ID: "r1"}, FlightNumber: "F1"},
		},
	}
	out := stripDanglingRoutesAndFlights(d)
	assert.Empty(t, out.Routes)
	assert.Empty(t, out.Flights)
}
