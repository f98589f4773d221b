// Package region holds the static table of known cities used by the
// recovery service (C2) to synthesize virtual stops and by the hub-route
// step to anchor a star topology on a configured hub city. The table is a
// stand-in for the "~30 entries" region table spec.md §4.2 step 4
// describes; coordinates are approximate city centers in the service's
// home region (the Sakha Republic / Russian Far East) and its major
// national hubs, mirroring the data the original system ships baked in.
package region

import "transit/pkg/domain"

// City is one entry of the static region table: a city name and its
// canonical coordinates, used when no better data is available.
type City struct {
	Name        string
	Coordinates domain.Coordinates
}

// Table is the static list of known cities. Order is insertion order and
// has no semantic meaning; callers needing a stable order should sort by
// normalized name.
var Table = []City{
	{"Якутск", domain.Coordinates{Lat: 62.0281, Lon: 129.7325}},
	{"Олёкминск", domain.Coordinates{Lat: 60.3733, Lon: 120.4264}},
	{"Мирный", domain.Coordinates{Lat: 62.5350, Lon: 113.9608}},
	{"Нерюнгри", domain.Coordinates{Lat: 56.6564, Lon: 124.6472}},
	{"Алдан", domain.Coordinates{Lat: 58.6031, Lon: 125.3997}},
	{"Ленск", domain.Coordinates{Lat: 60.7256, Lon: 114.9211}},
	{"Вилюйск", domain.Coordinates{Lat: 63.7558, Lon: 121.6325}},
	{"Покровск", domain.Coordinates{Lat: 61.4856, Lon: 129.1414}},
	{"Томмот", domain.Coordinates{Lat: 58.9656, Lon: 126.2844}},
	{"Нюрба", domain.Coordinates{Lat: 63.2842, Lon: 118.3417}},
	{"Верхоянск", domain.Coordinates{Lat: 67.5500, Lon: 133.3833}},
	{"Среднеколымск", domain.Coordinates{Lat: 67.4500, Lon: 153.6833}},
	{"Тикси", domain.Coordinates{Lat: 71.6356, Lon: 128.8689}},
	{"Депутатский", domain.Coordinates{Lat: 69.3000, Lon: 139.9000}},
	{"Усть-Нера", domain.Coordinates{Lat: 64.5667, Lon: 143.2000}},
	{"Жиганск", domain.Coordinates{Lat: 66.7667, Lon: 123.3667}},
	{"Чурапча", domain.Coordinates{Lat: 62.0167, Lon: 132.4333}},
	{"Amga", domain.Coordinates{Lat: 60.8897, Lon: 131.9692}},
	{"Хандыга", domain.Coordinates{Lat: 62.6667, Lon: 135.6000}},
	{"Белая Гора", domain.Coordinates{Lat: 68.9333, Lon: 146.1833}},
	{"Москва", domain.Coordinates{Lat: 55.7558, Lon: 37.6173}},
	{"Санкт-Петербург", domain.Coordinates{Lat: 59.9311, Lon: 30.3609}},
	{"Новосибирск", domain.Coordinates{Lat: 55.0084, Lon: 82.9357}},
	{"Иркутск", domain.Coordinates{Lat: 52.2869, Lon: 104.3050}},
	{"Хабаровск", domain.Coordinates{Lat: 48.4827, Lon: 135.0840}},
	{"Владивосток", domain.Coordinates{Lat: 43.1155, Lon: 131.8855}},
	{"Магадан", domain.Coordinates{Lat: 59.5638, Lon: 150.8039}},
	{"Красноярск", domain.Coordinates{Lat: 56.0184, Lon: 92.8672}},
	{"Чита", domain.Coordinates{Lat: 52.0340, Lon: 113.4994}},
	{"Благовещенск", domain.Coordinates{Lat: 50.2907, Lon: 127.5272}},
}

// KnownCityNames returns every region-table city's name normalized via
// domain.NormalizeCityName, for membership checks during recovery step 4.
func KnownCityNames() map[string]bool {
	names := make(map[string]bool, len(Table))
	for _, c := range Table {
		names[domain.NormalizeCityName(c.Name)] = true
	}
	return names
}

// Lookup returns the region-table entry for a normalized city name, if any.
func Lookup(normalizedCity string) (City, bool) {
	for _, c := range Table {
		if domain.NormalizeCityName(c.Name) == normalizedCity {
			return c, true
		}
	}
	return City{}, false
}
