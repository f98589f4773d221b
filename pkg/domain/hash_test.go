package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContentHashStableUnderReordering(t *testing.T) {
	stops := []Stop{
		{ID: "a", Name: "A"},
		{ID: "b", Name: "B"},
	}
	routes := []Route{
		{ID: "r1", FromStopID: "a", ToStopID: "b"},
	}

	h1 := ContentHash(stops, routes, nil)

	reordered := []Stop{stops[1], stops[0]}
	h2 := ContentHash(reordered, routes, nil)

	assert.Equal(t, h1, h2)
}

func TestContentHashChangesWithData(t *testing.T) {
	stops := []Stop{{ID: "a", Name: "A"}}
	h1 := ContentHash(stops, nil, nil)

	stops[0].Name = "Changed"
	h2 := ContentHash(stops, nil, nil)

	assert.NotEqual(t, h1, h2)
}

func TestSeedForCityPairDeterministic(t *testing.T) {
	s1 := SeedForCityPair("Yakutsk", "Moscow")
	s2 := SeedForCityPair("yakutsk", "moscow")
	assert.Equal(t, s1, s2)

	s3 := SeedForCityPair("Moscow", "Yakutsk")
	assert.NotEqual(t, s1, s3)
}
