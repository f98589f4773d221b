package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"time"
)

// ContentHash computes a deterministic sha256 digest over a dataset's
// stops, routes and flights (stops and routes sorted by ID, flights by
// route ID then flight number) with fixed field order and durations as
// whole seconds (no timestamps are serialized), so the sync worker (C11) can detect real change
// without depending on source-provider ordering. Grounded on the teacher's
// pkg/cache GraphHash canonicalization technique, adapted from a flow
// graph's nodes/edges to a transit dataset's stops/routes/flights.
func ContentHash(stops []Stop, routes []Route, flights []Flight) string {
	data := canonicalize(stops, routes, flights)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func canonicalize(stops []Stop, routes []Route, flights []Flight) []byte {
	sortedStops := append([]Stop(nil), stops...)
	sort.Slice(sortedStops, func(i, j int) bool { return sortedStops[i].ID < sortedStops[j].ID })

	sortedRoutes := append([]Route(nil), routes...)
	sort.Slice(sortedRoutes, func(i, j int) bool { return sortedRoutes[i].ID < sortedRoutes[j].ID })

	sortedFlights := append([]Flight(nil), flights...)
	sort.Slice(sortedFlights, func(i, j int) bool {
		if sortedFlights[i].Route.ID != sortedFlights[j].Route.ID {
			return sortedFlights[i].Route.ID < sortedFlights[j].Route.ID
		}
		return sortedFlights[i].FlightNumber < sortedFlights[j].FlightNumber
	})

	var buf []byte
	for _, s := range sortedStops {
		buf = append(buf, []byte(fmt.Sprintf("s:%s|%s|%s|%.6f|%.6f|%s|%t;",
			s.ID, s.Name, s.City, s.Coordinates.Lat, s.Coordinates.Lon, s.Transport, s.IsVirtual))...)
	}
	for _, r := range sortedRoutes {
		buf = append(buf, []byte(fmt.Sprintf("r:%s|%s|%s|%s|%d|%d|%.6f|%t;",
			r.ID, r.FromStopID, r.ToStopID, r.Transport,
			r.DepartureOffset/time.Second, r.Duration/time.Second, r.DistanceKm, r.IsVirtual))...)
	}
	for _, f := range sortedFlights {
		buf = append(buf, []byte(fmt.Sprintf("f:%s|%s|%s|%.6f|%.6f|%.6f;",
			f.Route.ID, f.FlightNumber, f.Airline,
			f.CancellationRate90d, f.AverageDelayMinutes, f.AverageOccupancy))...)
	}
	return buf
}

// SeedForCityPair derives a deterministic int64 seed from a (origin,
// destination) city pair, used by the recovery service to synthesize
// flight/schedule timings reproducibly instead of drawing from global
// randomness (DESIGN.md Open Question #3).
func SeedForCityPair(fromCity, toCity string) int64 {
	key := NormalizeCityName(fromCity) + "->" + NormalizeCityName(toCity)
	sum := sha256.Sum256([]byte(key))
	var seed int64
	for i := 0; i < 8; i++ {
		seed = seed<<8 | int64(sum[i])
	}
	if seed < 0 {
		seed = -seed
	}
	return seed
}
