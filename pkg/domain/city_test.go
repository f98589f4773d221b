package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeCityName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercases", "Yakutsk", "yakutsk"},
		{"trims", "  Yakutsk  ", "yakutsk"},
		{"collapses whitespace", "Nizhny   Novgorod", "nizhny novgorod"},
		{"folds yo to ye", "Вёшенская", "вешенская"},
		{"already normalized", "якутск", "якутск"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeCityName(tt.input))
		})
	}
}

func TestExtractCityName(t *testing.T) {
	assert.Equal(t, "якутск", ExtractCityName(Stop{City: "Якутск"}))
	assert.Equal(t, "якутск", ExtractCityName(Stop{Name: "г.Якутск"}))
	assert.Equal(t, "якутск", ExtractCityName(Stop{Name: "г.Якутск, привокзальная площадь"}))
	assert.Equal(t, "якутск", ExtractCityName(Stop{Name: "Центральный автовокзал, Якутск"}))
	assert.Equal(t, "якутск", ExtractCityName(Stop{Name: "Аэропорт Якутск"}))
	assert.Equal(t, "якутск", ExtractCityName(Stop{Name: "Вокзал Якутск"}))
	assert.Equal(t, "неизвестный пункт", ExtractCityName(Stop{Name: "Неизвестный пункт"}))
}

func TestVirtualStopIDDeterministic(t *testing.T) {
	id1 := VirtualStopID("Yakutsk")
	id2 := VirtualStopID("  yakutsk  ")
	assert.Equal(t, id1, id2)
	assert.Equal(t, "virtual-stop-yakutsk", id1)
}

func TestVirtualRouteIDDeterministic(t *testing.T) {
	id := VirtualRouteID("Yakutsk", "Moscow")
	assert.Equal(t, "virtual-route-yakutsk-moscow", id)
}
