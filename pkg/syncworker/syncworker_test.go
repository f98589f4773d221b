package syncworker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transit/pkg/datasetstore"
	"transit/pkg/domain"
)

type fakeProvider struct {
	raw domain.RawDataset
	err error
}

func (p *fakeProvider) Name() string                             { return "fake-primary" }
func (p *fakeProvider) Available(ctx context.Context) bool        { return p.err == nil }
func (p *fakeProvider) Load(ctx context.Context) (domain.RawDataset, error) {
	return p.raw, p.err
}

type fakeStore struct {
	latestHash   string
	noDataset    bool
	latestErr    error
	upsertErr    error
	upserted     []domain.Dataset
}

func (s *fakeStore) LatestHash(ctx context.Context) (string, error) {
	if s.latestErr != nil {
		return "", s.latestErr
	}
	if s.noDataset {
		return "", datasetstore.ErrNoDataset
	}
	return s.latestHash, nil
}

func (s *fakeStore) Upsert(ctx context.Context, d domain.Dataset) error {
	if s.upsertErr != nil {
		return s.upsertErr
	}
	s.upserted = append(s.upserted, d)
	return nil
}

func sampleRaw() domain.RawDataset {
	return domain.RawDataset{
		SourceName: "primary",
		FetchedAt:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Stops:      []domain.Stop{{ID: "s1", Name: "Stop One"}},
		Routes:     []domain.Route{{ID: "r1", Transport: domain.TransportBus, FromStopID: "s1", ToStopID: "s1"}},
	}
}

func TestRunFirstTimeNoDatasetPersists(t *testing.T) {
	raw := sampleRaw()
	provider := &fakeProvider{raw: raw}
	store := &fakeStore{noDataset: true}
	w := New(provider, store, nil, Config{MinInterval: time.Hour})

	result := w.Run(context.Background(), time.Now())

	require.NoError(t, result.Err)
	assert.True(t, result.Ran)
	assert.True(t, result.Changed)
	require.Len(t, store.upserted, 1)
	assert.Equal(t, domain.ContentHash(raw.Stops, raw.Routes, raw.Flights), store.upserted[0].ContentHash)
}

func TestRunNoChangesWhenHashMatches(t *testing.T) {
	raw := sampleRaw()
	hash := domain.ContentHash(raw.Stops, raw.Routes, raw.Flights)
	provider := &fakeProvider{raw: raw}
	store := &fakeStore{latestHash: hash}
	w := New(provider, store, nil, Config{MinInterval: time.Hour})

	result := w.Run(context.Background(), time.Now())

	require.NoError(t, result.Err)
	assert.True(t, result.Ran)
	assert.False(t, result.Changed)
	assert.Empty(t, store.upserted)
}

func TestRunChangedWhenHashDiffers(t *testing.T) {
	raw := sampleRaw()
	provider := &fakeProvider{raw: raw}
	store := &fakeStore{latestHash: "stale-hash"}

	var chained domain.Dataset
	chain := func(ctx context.Context, d domain.Dataset) error {
		chained = d
		return nil
	}
	w := New(provider, store, chain, Config{MinInterval: time.Hour})

	result := w.Run(context.Background(), time.Now())

	require.NoError(t, result.Err)
	assert.True(t, result.Changed)
	assert.Equal(t, 1, result.StopCount)
	require.Len(t, store.upserted, 1)
	assert.Equal(t, store.upserted[0].ContentHash, chained.ContentHash)
}

func TestRunFetchFailureDoesNotTouchStore(t *testing.T) {
	provider := &fakeProvider{err: errors.New("connection refused")}
	store := &fakeStore{latestHash: "whatever"}
	w := New(provider, store, nil, Config{MinInterval: time.Hour})

	result := w.Run(context.Background(), time.Now())

	require.Error(t, result.Err)
	assert.True(t, result.Ran)
	assert.Empty(t, store.upserted)
}

func TestRunUpsertFailureReportsErrorNotPanic(t *testing.T) {
	raw := sampleRaw()
	provider := &fakeProvider{raw: raw}
	store := &fakeStore{noDataset: true, upsertErr: errors.New("tx rollback")}
	w := New(provider, store, nil, Config{MinInterval: time.Hour})

	result := w.Run(context.Background(), time.Now())

	require.Error(t, result.Err)
	assert.True(t, result.Ran)
}

func TestRunChainFailureDoesNotFailTheRun(t *testing.T) {
	raw := sampleRaw()
	provider := &fakeProvider{raw: raw}
	store := &fakeStore{noDataset: true}
	chain := func(ctx context.Context, d domain.Dataset) error {
		return errors.New("downstream unavailable")
	}
	w := New(provider, store, chain, Config{MinInterval: time.Hour})

	result := w.Run(context.Background(), time.Now())

	assert.NoError(t, result.Err)
	assert.True(t, result.Changed)
}

func TestCanRunEnforcesMinInterval(t *testing.T) {
	store := &fakeStore{noDataset: true}
	w := New(&fakeProvider{raw: sampleRaw()}, store, nil, Config{MinInterval: time.Hour})

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	assert.True(t, w.CanRun(now))

	first := w.Run(context.Background(), now)
	require.True(t, first.Ran)

	assert.False(t, w.CanRun(now.Add(30*time.Minute)))
	second := w.Run(context.Background(), now.Add(30*time.Minute))
	assert.False(t, second.Ran)

	assert.True(t, w.CanRun(now.Add(61*time.Minute)))
}

func TestDefaultConfigIsOneHour(t *testing.T) {
	assert.Equal(t, time.Hour, DefaultConfig().MinInterval)
}
