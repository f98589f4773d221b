// Package graphbuilder implements the C6 Graph Builder: it turns a
// Dataset into an in-memory graph.Graph. Adapted from
// other_examples/…passbi_core's internal/graph/builder.go (there,
// Postgres-backed BuildNodes/BuildEdges/buildTransferEdges querying a
// database; here, building directly from an in-memory Dataset since
// this service's graph lives entirely in process).
package graphbuilder

import (
	"strings"

	"transit/pkg/domain"
	"transit/pkg/graph"
)

const (
	virtualStopPrefix     = "virtual-stop-"
	transferWeightMinutes = 90.0
	minEdgeWeightMinutes  = 1.0
)

// Builder constructs a graph.Graph from a Dataset.
type Builder struct{}

// New creates a Builder.
func New() *Builder {
	return &Builder{}
}

// Build runs spec.md §4.6's process over d and returns a freshly
// populated graph.Graph.
func (b *Builder) Build(d domain.Dataset) *graph.Graph {
	g := graph.New()

	b.insertNodes(g, d.Stops)
	b.insertRouteEdges(g, d.Routes, d.Flights)
	b.insertTransferEdges(g, d.Stops)

	return g
}

// insertNodes implements step 2: one node per stop, with city derived
// via the shared canonical extractor and isVirtual detected from the ID
// prefix (not just the Stop.IsVirtual flag, matching spec.md §4.6's
// "stopId startsWith virtual-stop-" rule literally).
func (b *Builder) insertNodes(g *graph.Graph, stops []domain.Stop) {
	for _, s := range stops {
		g.AddNode(domain.GraphNode{
			StopID:      s.ID,
			City:        domain.ExtractCityName(s),
			Coordinates: s.Coordinates,
			IsVirtual:   strings.HasPrefix(s.ID, virtualStopPrefix),
		})
	}
}

// insertRouteEdges implements step 3 and step 5 (real and virtual
// routes are inserted identically — virtual routes are just Routes with
// IsVirtual set).
func (b *Builder) insertRouteEdges(g *graph.Graph, routes []domain.Route, flights []domain.Flight) {
	flightsByRoute := make(map[string][]domain.Flight, len(flights))
	for _, f := range flights {
		flightsByRoute[f.Route.ID] = append(flightsByRoute[f.Route.ID], f)
	}

	for _, r := range routes {
		if r.FromStopID == "" || r.ToStopID == "" {
			continue
		}
		weight := routeWeightMinutes(r, flightsByRoute[r.ID])
		g.AddEdge(domain.GraphEdge{
			FromStopID: r.FromStopID,
			ToStopID:   r.ToStopID,
			RouteID:    r.ID,
			Transport:  r.Transport,
			Weight:     weight,
			DistanceKm: r.DistanceKm,
		})
	}
}

// routeWeightMinutes implements step 3's weight derivation: a
// representative flight's arrival-minus-departure, else the route's own
// duration, else the transport's template duration. Never zero or
// negative — floored to 1 minute.
func routeWeightMinutes(r domain.Route, flights []domain.Flight) float64 {
	var minutes float64
	switch {
	case len(flights) > 0:
		minutes = flights[0].Route.Duration.Minutes()
	case r.Duration > 0:
		minutes = r.Duration.Minutes()
	default:
		minutes = templateDurationMinutes(r.Transport)
	}
	if minutes < minEdgeWeightMinutes {
		return minEdgeWeightMinutes
	}
	return minutes
}

func templateDurationMinutes(t domain.TransportType) float64 {
	switch t {
	case domain.TransportPlane:
		return 120
	case domain.TransportBus:
		return 240
	case domain.TransportTrain:
		return 180
	case domain.TransportFerry:
		return 180
	case domain.TransportTaxi:
		return 60
	default:
		return 120
	}
}

// insertTransferEdges implements step 4: a bidirectional TRANSFER edge
// of fixed weight between every pair of real stops sharing a city but
// differing in transport facility.
func (b *Builder) insertTransferEdges(g *graph.Graph, stops []domain.Stop) {
	groups := make(map[string][]domain.Stop)
	for _, s := range stops {
		if s.IsVirtual || strings.HasPrefix(s.ID, virtualStopPrefix) {
			continue
		}
		city := domain.ExtractCityName(s)
		groups[city] = append(groups[city], s)
	}

	for _, members := range groups {
		for i := 0; i < len(members); i++ {
			for j := i + 1; j < len(members); j++ {
				a, c := members[i], members[j]
				if a.Transport == c.Transport {
					continue
				}
				g.AddEdge(domain.GraphEdge{
					FromStopID: a.ID,
					ToStopID:   c.ID,
					RouteID:    "",
					Transport:  domain.TransportTransfer,
					Weight:     transferWeightMinutes,
				})
				g.AddEdge(domain.GraphEdge{
					FromStopID: c.ID,
					ToStopID:   a.ID,
					RouteID:    "",
					Transport:  domain.TransportTransfer,
					Weight:     transferWeightMinutes,
				})
			}
		}
	}
}
