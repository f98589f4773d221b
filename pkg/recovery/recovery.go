// Package recovery implements the C2 Recovery Service: a pipeline of
// idempotent steps that fill in coordinates, schedules, names and
// virtual connectivity a low-quality Dataset is missing, so the graph
// builder (C6) always has enough structure to route over. Grounded on
// the teacher's immutable-snapshot style (recovery steps return a new
// Dataset value rather than mutating in place) and on
// other_examples/…passbi_core's haversineDistance helper for
// weight-from-distance calculations.
package recovery

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"transit/pkg/domain"
	"transit/pkg/logger"
	"transit/pkg/region"
)

// scheduleTemplate is one row of spec.md §4.2 step 2's transport-type
// template table.
type scheduleTemplate struct {
	flightsPerDay int
	windows       [][2]int // hour ranges, inclusive start, exclusive end
	durationMin   int
}

var scheduleTemplates = map[domain.TransportType]scheduleTemplate{
	domain.TransportPlane: {2, [][2]int{{8, 10}, {16, 18}}, 120},
	domain.TransportBus:   {4, [][2]int{{6, 8}, {10, 12}, {14, 16}, {18, 20}}, 240},
	domain.TransportTrain: {3, [][2]int{{7, 9}, {13, 15}, {19, 21}}, 180},
	domain.TransportFerry: {2, [][2]int{{9, 11}, {15, 17}}, 180},
	domain.TransportTaxi:  {1, [][2]int{{0, 24}}, 60},
}

var defaultTemplate = scheduleTemplate{2, [][2]int{{9, 11}, {15, 17}}, 120}

// virtualMeshSpeedKmh and its penalty multiplier back step 6's weight
// formula: haversine km at 60 km/h, inflated 1.3x for indirectness.
const (
	virtualMeshSpeedKmh   = 60.0
	virtualMeshPenalty    = 1.3
	coordinateJitterDeg   = 0.01
	hubSearchRadiusDeg    = 0.5
	flightsPerRouteDays   = 365
)

// Config parameterizes the recovery pipeline. Zero value uses spec
// defaults (region center 62.0,129.0 and the 500-node mesh cap).
type Config struct {
	RegionCenter        domain.Coordinates
	HubCityName         string
	HubCoordinates      domain.Coordinates
	MaxVirtualMeshNodes int
}

// DefaultConfig returns spec.md §4.2's default parameters.
func DefaultConfig() Config {
	return Config{
		RegionCenter:        domain.Coordinates{Lat: 62.0, Lon: 129.0},
		HubCityName:         "якутск",
		HubCoordinates:      domain.Coordinates{Lat: 62.0281, Lon: 129.7325},
		MaxVirtualMeshNodes: domain.MaxVirtualMeshNodes,
	}
}

// StepResult reports one recovery step's outcome.
type StepResult struct {
	Name    string
	Applied int
	Skipped bool
	Err     error
}

// Result is the output of a full recovery run.
type Result struct {
	Dataset domain.Dataset
	Steps   []StepResult
}

// Service runs the ordered recovery pipeline over a Dataset.
type Service struct {
	cfg Config
}

// New creates a Service with the given configuration.
func New(cfg Config) *Service {
	return &Service{cfg: cfg}
}

// Recover runs every step of spec.md §4.2 in order against d, returning
// a new Dataset (the input is never mutated) and a per-step report.
// Each step's failure is logged and skipped; recovery always completes
// with whatever partial progress was made.
func (s *Service) Recover(ctx context.Context, d domain.Dataset) Result {
	result := Result{Dataset: cloneDataset(d)}

	steps := []func(domain.Dataset) (domain.Dataset, int, error){
		s.recoverCoordinates,
		s.synthesizeSchedules,
		s.fillMissingNames,
		s.insertVirtualStops,
		s.buildHubRoutes,
		s.buildVirtualMesh,
		s.bridgeRealAndVirtual,
	}
	names := []string{
		"recover_coordinates",
		"synthesize_schedules",
		"fill_missing_names",
		"insert_virtual_stops",
		"build_hub_routes",
		"build_virtual_mesh",
		"bridge_real_virtual",
	}

	for i, step := range steps {
		select {
		case <-ctx.Done():
			result.Steps = append(result.Steps, StepResult{Name: names[i], Skipped: true, Err: ctx.Err()})
			continue
		default:
		}

		next, count, err := step(result.Dataset)
		if err != nil {
			logger.Warn("recovery step failed, skipping", "step", names[i], "error", err)
			result.Steps = append(result.Steps, StepResult{Name: names[i], Skipped: true, Err: err})
			continue
		}
		result.Dataset = next
		result.Steps = append(result.Steps, StepResult{Name: names[i], Applied: count})
	}

	return result
}

// recoverCoordinates implements step 1: interpolate missing stop
// coordinates from route-adjacent neighbors, falling back to the
// configured region center.
func (s *Service) recoverCoordinates(d domain.Dataset) (domain.Dataset, int, error) {
	stopIndex := make(map[string]int, len(d.Stops))
	for i, st := range d.Stops {
		stopIndex[st.ID] = i
	}

	neighbors := adjacencyFromRoutes(d.Routes)

	stops := append([]domain.Stop(nil), d.Stops...)
	applied := 0

	for i, st := range stops {
		if !st.Coordinates.IsZero() && st.Coordinates.Valid() {
			continue
		}

		prev, next := nearestCoordNeighbors(st.ID, neighbors, stops, stopIndex)
		switch {
		case prev != nil && next != nil:
			stops[i].Coordinates = domain.Coordinates{
				Lat: (prev.Lat + next.Lat) / 2,
				Lon: (prev.Lon + next.Lon) / 2,
			}
		case prev != nil:
			stops[i].Coordinates = domain.Coordinates{Lat: prev.Lat + coordinateJitterDeg, Lon: prev.Lon + coordinateJitterDeg}
		case next != nil:
			stops[i].Coordinates = domain.Coordinates{Lat: next.Lat + coordinateJitterDeg, Lon: next.Lon + coordinateJitterDeg}
		default:
			center := s.cfg.RegionCenter
			if center.IsZero() {
				center = DefaultConfig().RegionCenter
			}
			stops[i].Coordinates = center
		}
		applied++
	}

	d.Stops = stops
	return d, applied, nil
}

// adjacencyFromRoutes builds an undirected adjacency list over stop IDs
// from the flattened Route model, used to walk outward from a stop
// missing coordinates until a populated neighbor is found.
func adjacencyFromRoutes(routes []domain.Route) map[string][]string {
	adj := make(map[string][]string)
	for _, r := range routes {
		adj[r.FromStopID] = append(adj[r.FromStopID], r.ToStopID)
		adj[r.ToStopID] = append(adj[r.ToStopID], r.FromStopID)
	}
	return adj
}

// nearestCoordNeighbors performs a bounded breadth-first search from
// stopID in both directions, returning the first coordinate-bearing
// stop found as "prev" and a second, distinct one as "next" — a stand-in
// for spec.md's "look left"/"look right" over a route's stop sequence,
// generalized to the graph adjacency since this model has no ordered
// stop list per route.
func nearestCoordNeighbors(stopID string, adj map[string][]string, stops []domain.Stop, index map[string]int) (*domain.Coordinates, *domain.Coordinates) {
	visited := map[string]bool{stopID: true}
	queue := append([]string(nil), adj[stopID]...)
	var found []domain.Coordinates

	for len(queue) > 0 && len(found) < 2 {
		id := queue[0]
		queue = queue[1:]
		if visited[id] {
			continue
		}
		visited[id] = true

		if idx, ok := index[id]; ok {
			c := stops[idx].Coordinates
			if !c.IsZero() && c.Valid() {
				found = append(found, c)
				continue
			}
		}
		queue = append(queue, adj[id]...)
	}

	switch len(found) {
	case 0:
		return nil, nil
	case 1:
		return &found[0], nil
	default:
		return &found[0], &found[1]
	}
}

// synthesizeSchedules implements step 2: generate a year of deterministic
// flights for every route lacking any.
func (s *Service) synthesizeSchedules(d domain.Dataset) (domain.Dataset, int, error) {
	scheduled := make(map[string]bool, len(d.Flights))
	for _, f := range d.Flights {
		scheduled[f.Route.ID] = true
	}

	stopByID := make(map[string]domain.Stop, len(d.Stops))
	for _, st := range d.Stops {
		stopByID[st.ID] = st
	}

	flights := append([]domain.Flight(nil), d.Flights...)
	applied := 0

	for _, r := range d.Routes {
		if scheduled[r.ID] {
			continue
		}

		tmpl, ok := scheduleTemplates[r.Transport]
		if !ok {
			tmpl = defaultTemplate
		}

		from := stopByID[r.FromStopID]
		to := stopByID[r.ToStopID]
		seed := domain.SeedForCityPair(domain.ExtractCityName(from), domain.ExtractCityName(to))
		rng := rand.New(rand.NewSource(seed))

		for day := 0; day < flightsPerRouteDays; day++ {
			for slot, window := range tmpl.windows {
				depHour := window[0] + rng.Float64()*float64(window[1]-window[0])
				depOffset := time.Duration(float64(day)*24*float64(time.Hour)) + time.Duration(depHour*float64(time.Hour))

				route := r
				route.DepartureOffset = depOffset
				route.Duration = time.Duration(tmpl.durationMin) * time.Minute

				flights = append(flights, domain.Flight{
					Route:        route,
					FlightNumber: fmt.Sprintf("%s-%d-%d", r.ID, day, slot),
				})
			}
		}
		applied++
	}

	d.Flights = flights
	return d, applied, nil
}

// fillMissingNames implements step 3.
func (s *Service) fillMissingNames(d domain.Dataset) (domain.Dataset, int, error) {
	stops := append([]domain.Stop(nil), d.Stops...)
	applied := 0
	for i := range stops {
		if stops[i].Name == "" {
			stops[i].Name = fmt.Sprintf("Stop #%d", i+1)
			applied++
		}
	}
	d.Stops = stops
	return d, applied, nil
}

// insertVirtualStops implements step 4: every region-table city absent
// from the dataset gets a deterministic virtual stop.
func (s *Service) insertVirtualStops(d domain.Dataset) (domain.Dataset, int, error) {
	present := make(map[string]bool, len(d.Stops))
	for _, st := range d.Stops {
		present[domain.ExtractCityName(st)] = true
	}

	stops := append([]domain.Stop(nil), d.Stops...)
	applied := 0

	for _, city := range region.Table {
		normalized := domain.NormalizeCityName(city.Name)
		if present[normalized] {
			continue
		}
		stops = append(stops, domain.Stop{
			ID:          domain.VirtualStopID(city.Name),
			Name:        city.Name,
			City:        city.Name,
			Coordinates: city.Coordinates,
			IsVirtual:   true,
		})
		present[normalized] = true
		applied++
	}

	d.Stops = stops
	return d, applied, nil
}

// buildHubRoutes implements step 5: ensure both directions between the
// hub city and every other city-stop exist as virtual routes.
func (s *Service) buildHubRoutes(d domain.Dataset) (domain.Dataset, int, error) {
	hub := s.findHub(d.Stops)
	if hub == nil {
		return d, 0, fmt.Errorf("recovery: no hub stop found")
	}

	existing := existingRouteKeys(d.Routes)
	cityStops := latestStopPerCity(d.Stops)

	routes := append([]domain.Route(nil), d.Routes...)
	flights := append([]domain.Flight(nil), d.Flights...)
	applied := 0

	for city, st := range cityStops {
		if city == domain.ExtractCityName(*hub) {
			continue
		}
		for _, pair := range [][2]domain.Stop{{*hub, st}, {st, *hub}} {
			from, to := pair[0], pair[1]
			routeID := domain.VirtualRouteID(domain.ExtractCityName(from), domain.ExtractCityName(to))
			if existing[routeID] {
				continue
			}
			route := domain.Route{
				ID:         routeID,
				FromStopID: from.ID,
				ToStopID:   to.ID,
				Transport:  domain.TransportBus,
				IsVirtual:  true,
			}
			routes = append(routes, route)
			existing[routeID] = true
			applied++

			seed := domain.SeedForCityPair(domain.ExtractCityName(from), domain.ExtractCityName(to))
			newFlights := synthesizeOneYear(route, scheduleTemplates[domain.TransportBus], seed)
			flights = append(flights, newFlights...)
		}
	}

	d.Routes = routes
	d.Flights = flights
	return d, applied, nil
}

// findHub resolves the hub stop: the stop whose normalized city is
// "якутск", or the nearest stop within hubSearchRadiusDeg of the
// configured hub coordinate.
func (s *Service) findHub(stops []domain.Stop) *domain.Stop {
	for i, st := range stops {
		if domain.ExtractCityName(st) == s.cfg.HubCityName {
			return &stops[i]
		}
	}

	var best *domain.Stop
	bestDist := math.MaxFloat64
	for i, st := range stops {
		if st.Coordinates.IsZero() {
			continue
		}
		d := euclidean(st.Coordinates, s.cfg.HubCoordinates)
		if d <= hubSearchRadiusDeg && d < bestDist {
			bestDist = d
			best = &stops[i]
		}
	}
	return best
}

// buildVirtualMesh implements step 6: ensure a virtual route for every
// ordered pair of virtual stops, capped at MaxVirtualMeshNodes (beyond
// which the hub-and-spoke topology from step 5 stands in for full
// connectivity, see DESIGN.md Open Question on mesh scaling).
func (s *Service) buildVirtualMesh(d domain.Dataset) (domain.Dataset, int, error) {
	var virtual []domain.Stop
	for _, st := range d.Stops {
		if st.IsVirtual {
			virtual = append(virtual, st)
		}
	}

	maxNodes := s.cfg.MaxVirtualMeshNodes
	if maxNodes <= 0 {
		maxNodes = domain.MaxVirtualMeshNodes
	}
	if len(virtual) > maxNodes {
		logger.Warn("virtual mesh exceeds node cap, skipping full mesh", "nodes", len(virtual), "cap", maxNodes)
		return d, 0, nil
	}

	existing := existingRouteKeys(d.Routes)
	routes := append([]domain.Route(nil), d.Routes...)
	applied := 0

	for _, a := range virtual {
		for _, b := range virtual {
			if a.ID == b.ID {
				continue
			}
			routeID := domain.VirtualRouteID(domain.ExtractCityName(a), domain.ExtractCityName(b))
			if existing[routeID] {
				continue
			}
			routes = append(routes, domain.Route{
				ID:         routeID,
				FromStopID: a.ID,
				ToStopID:   b.ID,
				Transport:  domain.TransportBus,
				Duration:   meshDuration(a.Coordinates, b.Coordinates),
				DistanceKm: haversineKm(a.Coordinates, b.Coordinates),
				IsVirtual:  true,
			})
			existing[routeID] = true
			applied++
		}
	}

	d.Routes = routes
	return d, applied, nil
}

// bridgeRealAndVirtual implements step 7.
func (s *Service) bridgeRealAndVirtual(d domain.Dataset) (domain.Dataset, int, error) {
	var real, virtual []domain.Stop
	for _, st := range d.Stops {
		if st.IsVirtual {
			virtual = append(virtual, st)
		} else {
			real = append(real, st)
		}
	}

	existing := existingRouteKeys(d.Routes)
	routes := append([]domain.Route(nil), d.Routes...)
	applied := 0

	for _, r := range real {
		for _, v := range virtual {
			for _, pair := range [][2]domain.Stop{{r, v}, {v, r}} {
				from, to := pair[0], pair[1]
				routeID := domain.VirtualRouteID(domain.ExtractCityName(from), domain.ExtractCityName(to))
				if existing[routeID] {
					continue
				}
				routes = append(routes, domain.Route{
					ID:         routeID,
					FromStopID: from.ID,
					ToStopID:   to.ID,
					Transport:  domain.TransportBus,
					Duration:   meshDuration(from.Coordinates, to.Coordinates),
					DistanceKm: haversineKm(from.Coordinates, to.Coordinates),
					IsVirtual:  true,
				})
				existing[routeID] = true
				applied++
			}
		}
	}

	d.Routes = routes
	return d, applied, nil
}

func synthesizeOneYear(route domain.Route, tmpl scheduleTemplate, seed int64) []domain.Flight {
	rng := rand.New(rand.NewSource(seed))
	var flights []domain.Flight
	for day := 0; day < flightsPerRouteDays; day++ {
		for slot, window := range tmpl.windows {
			depHour := window[0] + rng.Float64()*float64(window[1]-window[0])
			depOffset := time.Duration(float64(day)*24*float64(time.Hour)) + time.Duration(depHour*float64(time.Hour))

			r := route
			r.DepartureOffset = depOffset
			r.Duration = time.Duration(tmpl.durationMin) * time.Minute

			flights = append(flights, domain.Flight{
				Route:        r,
				FlightNumber: fmt.Sprintf("%s-%d-%d", route.ID, day, slot),
			})
		}
	}
	return flights
}

// meshDuration implements step 6/7's weight formula: haversine km at
// 60 km/h times a 1.3 indirectness penalty, expressed as a duration.
func meshDuration(a, b domain.Coordinates) time.Duration {
	km := haversineKm(a, b)
	hours := (km / virtualMeshSpeedKmh) * virtualMeshPenalty
	return time.Duration(hours * float64(time.Hour))
}

// haversineKm returns the great-circle distance between two coordinates
// in kilometers. Grounded on other_examples/…passbi_core's
// haversineDistance (there in meters; converted here to km).
func haversineKm(a, b domain.Coordinates) float64 {
	const earthRadiusKm = 6371.0

	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	deltaLat := (b.Lat - a.Lat) * math.Pi / 180
	deltaLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(deltaLon/2)*math.Sin(deltaLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusKm * c
}

func euclidean(a, b domain.Coordinates) float64 {
	return math.Hypot(a.Lat-b.Lat, a.Lon-b.Lon)
}

func existingRouteKeys(routes []domain.Route) map[string]bool {
	keys := make(map[string]bool, len(routes))
	for _, r := range routes {
		keys[r.ID] = true
	}
	return keys
}

// latestStopPerCity picks one representative stop per normalized city
// name, preferring the last occurrence (virtual stops inserted by step 4
// are appended after real stops, so this favors the canonical
// region-table entry when both exist).
func latestStopPerCity(stops []domain.Stop) map[string]domain.Stop {
	byCity := make(map[string]domain.Stop)
	for _, st := range stops {
		byCity[domain.ExtractCityName(st)] = st
	}
	return byCity
}

func cloneDataset(d domain.Dataset) domain.Dataset {
	clone := d
	clone.Stops = append([]domain.Stop(nil), d.Stops...)
	clone.Routes = append([]domain.Route(nil), d.Routes...)
	clone.Flights = append([]domain.Flight(nil), d.Flights...)
	return clone
}
