package region

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transit/pkg/domain"
)

func TestKnownCityNamesNormalized(t *testing.T) {
	names := KnownCityNames()
	require.NotEmpty(t, names)
	assert.True(t, names[domain.NormalizeCityName("Якутск")])
	assert.True(t, names["якутск"])
}

func TestLookupFoldsYo(t *testing.T) {
	c, ok := Lookup(domain.NormalizeCityName("Олекминск"))
	require.True(t, ok)
	assert.Equal(t, "Олёкминск", c.Name)
}

func TestLookupUnknownCity(t *testing.T) {
	_, ok := Lookup("nonexistent-city")
	assert.False(t, ok)
}

func TestTableEntriesHaveValidCoordinates(t *testing.T) {
	for _, c := range Table {
		assert.GreaterOrEqual(t, c.Coordinates.Lat, -90.0, c.Name)
		assert.LessOrEqual(t, c.Coordinates.Lat, 90.0, c.Name)
		assert.GreaterOrEqual(t, c.Coordinates.Lon, -180.0, c.Name)
		assert.LessOrEqual(t, c.Coordinates.Lon, 180.0, c.Name)
		assert.NotEmpty(t, c.Name)
	}
}

func TestTableNamesUniqueWhenNormalized(t *testing.T) {
	seen := make(map[string]string)
	for _, c := range Table {
		n := domain.NormalizeCityName(c.Name)
		if prev, ok := seen[n]; ok {
			t.Fatalf("duplicate normalized city name %q from %q and %q", n, prev, c.Name)
		}
		seen[n] = c.Name
	}
}
