package cache

import (
	"testing"

	"transit/pkg/domain"
)

func TestDatasetHash(t *testing.T) {
	stops := []domain.Stop{
		{ID: "s1", Name: "A", Coordinates: domain.Coordinates{Lat: 1, Lon: 2}},
		{ID: "s2", Name: "B", Coordinates: domain.Coordinates{Lat: 3, Lon: 4}},
	}
	routes := []domain.Route{
		{ID: "r1", FromStopID: "s1", ToStopID: "s2", Transport: domain.TransportBus},
	}

	t.Run("same dataset produces same hash", func(t *testing.T) {
		h1 := DatasetHash(stops, routes, nil)
		h2 := DatasetHash(stops, routes, nil)
		if h1 != h2 {
			t.Errorf("same dataset should produce same hash: %v != %v", h1, h2)
		}
	})

	t.Run("different datasets produce different hashes", func(t *testing.T) {
		other := append([]domain.Stop{}, stops...)
		other[0].Name = "Changed"

		h1 := DatasetHash(stops, routes, nil)
		h2 := DatasetHash(other, routes, nil)
		if h1 == h2 {
			t.Error("different datasets should produce different hashes")
		}
	})

	t.Run("stop order does not affect hash", func(t *testing.T) {
		reordered := []domain.Stop{stops[1], stops[0]}

		h1 := DatasetHash(stops, routes, nil)
		h2 := DatasetHash(reordered, routes, nil)
		if h1 != h2 {
			t.Error("stop order should not affect hash")
		}
	})

	t.Run("truncated to 32 chars", func(t *testing.T) {
		h := DatasetHash(stops, routes, nil)
		if len(h) > 32 {
			t.Errorf("DatasetHash length = %d, want <= 32", len(h))
		}
	})
}

func TestBuildDatasetKey(t *testing.T) {
	key := BuildDatasetKey("transit", "abc123")
	expected := "transit:dataset:abc123"
	if key != expected {
		t.Errorf("BuildDatasetKey() = %v, want %v", key, expected)
	}
}

func TestBuildGraphKey(t *testing.T) {
	tests := []struct {
		name     string
		prefix   string
		hash     string
		mode     string
		expected string
	}{
		{"without mode", "transit", "abc123", "", "transit:graph:abc123"},
		{"with mode", "transit", "abc123", "REAL", "transit:graph:abc123:REAL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := BuildGraphKey(tt.prefix, tt.hash, tt.mode)
			if key != tt.expected {
				t.Errorf("BuildGraphKey() = %v, want %v", key, tt.expected)
			}
		})
	}
}

func TestBuildSearchKey(t *testing.T) {
	key := BuildSearchKey("abc123", "s1", "s2", 3)
	expected := "search:abc123:s1:s2:3"
	if key != expected {
		t.Errorf("BuildSearchKey() = %v, want %v", key, expected)
	}
}

func TestQuickHash(t *testing.T) {
	data := []byte("test data")
	hash := QuickHash(data)

	if len(hash) != 64 {
		t.Errorf("QuickHash length = %d, want 64", len(hash))
	}

	hash2 := QuickHash(data)
	if hash != hash2 {
		t.Error("same data should produce same hash")
	}
}

func TestShortHash(t *testing.T) {
	data := []byte("test data")
	hash := ShortHash(data)

	if len(hash) != 16 {
		t.Errorf("ShortHash length = %d, want 16", len(hash))
	}
}
