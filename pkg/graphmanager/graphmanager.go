// Package graphmanager implements the C10 Graph Manager: a
// process-wide singleton that owns the current in-memory graph and its
// lifecycle state, per spec.md §4.10. Grounded on the teacher's
// solver-svc factory's single-mutex-plus-broadcast-channel pattern for
// collapsing concurrent initializers into one in-flight call, adapted
// from a per-request solver instance to a long-lived process
// singleton.
package graphmanager

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"transit/pkg/apperror"
	"transit/pkg/domain"
	"transit/pkg/graph"
	"transit/pkg/graphbuilder"
	"transit/pkg/logger"
)

// DatasetLoader is the C5 collaborator: anything that can produce the
// current Dataset on demand.
type DatasetLoader interface {
	LoadData(ctx context.Context) domain.Dataset
}

// Manager owns the process-wide graph singleton.
type Manager struct {
	loader  DatasetLoader
	builder *graphbuilder.Builder

	mu            sync.Mutex
	state         domain.GraphState
	g             *graph.Graph
	ready         chan struct{} // closed once the in-flight initialize() finishes
	lastErr       error
	lastInit      domain.QualityReport
	catalogCities map[string]bool
}

// New creates a Manager reading datasets from loader.
func New(loader DatasetLoader) *Manager {
	return &Manager{
		loader:  loader,
		builder: graphbuilder.New(),
		state:   domain.GraphUninitialized,
	}
}

// Stats is the C10 stats() operation's return shape.
type Stats struct {
	State domain.GraphState
	graph.Stats
}

// GetGraph returns the current Ready graph, initializing it first if
// necessary, per spec.md §4.10's getGraph() contract: a mandatory
// synchronize()+validate()+validateAllEdgesWeight() sequence runs
// before every return, with one automatic re-sync attempt on failure
// before surfacing GRAPH_INVALID.
func (m *Manager) GetGraph(ctx context.Context) (*graph.Graph, error) {
	if err := m.ensureInitialized(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	g := m.g
	m.mu.Unlock()

	if err := m.syncValidateAudit(g); err != nil {
		logger.Warn("graphmanager: post-fetch validation failed, retrying sync once", "error", err)
		if err := m.syncValidateAudit(g); err != nil {
			return nil, apperror.New(apperror.CodeGraphInvalid, "graph failed validation after automatic re-sync").WithDetails("cause", err.Error())
		}
	}

	return g, nil
}

func (m *Manager) syncValidateAudit(g *graph.Graph) error {
	g.Synchronize()
	report := g.Validate()
	if !report.IsValid {
		return fmt.Errorf("graph invalid: %v", report.Errors)
	}
	audit := g.ValidateAllEdgesWeight(50)
	if audit.TotalInvalid > 0 {
		return fmt.Errorf("graph has %d invalid edge weights", audit.TotalInvalid)
	}
	return nil
}

// ensureInitialized triggers Initialize() if the graph is not Ready,
// collapsing concurrent callers onto the single in-flight attempt.
func (m *Manager) ensureInitialized(ctx context.Context) error {
	m.mu.Lock()
	switch m.state {
	case domain.GraphReady:
		m.mu.Unlock()
		return nil
	case domain.GraphInitializing:
		waitCh := m.ready
		m.mu.Unlock()
		<-waitCh
		m.mu.Lock()
		err := m.lastErr
		ready := m.state == domain.GraphReady
		m.mu.Unlock()
		if ready {
			return nil
		}
		if err != nil {
			return err
		}
		return apperror.ErrGraphUnavailable
	default: // Uninitialized or Stale
		m.state = domain.GraphInitializing
		m.ready = make(chan struct{})
		m.mu.Unlock()
	}

	err := m.initialize(ctx)

	m.mu.Lock()
	m.lastErr = err
	if err != nil {
		m.state = domain.GraphUninitialized
	} else {
		m.state = domain.GraphReady
	}
	close(m.ready)
	m.mu.Unlock()

	return err
}

// initialize runs spec.md §4.10's sanity steps in order, each logged.
func (m *Manager) initialize(ctx context.Context) error {
	logger.Info("graphmanager: initializing")

	dataset := m.loader.LoadData(ctx)
	logger.Info("graphmanager: dataset loaded", "stop_count", len(dataset.Stops), "route_count", len(dataset.Routes))

	dataset = stripStaleVirtualStops(dataset)
	dataset = stripDanglingRoutesAndFlights(dataset)

	g := m.builder.Build(dataset)
	logger.Info("graphmanager: graph built", "node_count", len(g.AllNodes()))

	syncReport := g.Synchronize()
	logger.Info("graphmanager: synchronized", "removed_edges", syncReport.RemovedEdges, "fixed_edges", syncReport.FixedEdges)

	validation := g.Validate()
	if !validation.IsValid {
		return fmt.Errorf("graph validation failed: %v", validation.Errors)
	}

	audit := g.ValidateAllEdgesWeight(50)
	if audit.TotalInvalid > 0 {
		return fmt.Errorf("graph weight audit found %d invalid edges", audit.TotalInvalid)
	}

	logConnectivityHistogram(g)

	m.mu.Lock()
	m.g = g
	m.catalogCities = catalogCityNames(dataset)
	m.mu.Unlock()

	return nil
}

// UpdateGraph reloads the dataset, builds a new graph (nodes and edges)
// from it, validates it and swaps it in. Nodes of the previous graph that
// the reloaded dataset lacks are not carried over.
func (m *Manager) UpdateGraph(ctx context.Context) error {
	dataset := m.loader.LoadData(ctx)
	dataset = stripStaleVirtualStops(dataset)
	dataset = stripDanglingRoutesAndFlights(dataset)

	g := m.builder.Build(dataset)
	if err := m.syncValidateAudit(g); err != nil {
		return apperror.New(apperror.CodeGraphInvalid, "rebuilt graph failed validation").WithDetails("cause", err.Error())
	}

	m.mu.Lock()
	m.g = g
	m.catalogCities = catalogCityNames(dataset)
	m.state = domain.GraphReady
	m.mu.Unlock()
	return nil
}

// KnownCities reports whether a normalized city name appears anywhere in
// the catalog backing the last successful initialization, independent of
// whether that city's stops survived into the live graph snapshot. The
// path finder (C8) uses this to tell STOPS_NOT_FOUND ("city never
// existed") apart from GRAPH_OUT_OF_SYNC ("city's stops were dropped by a
// later synchronize()"), per spec.md §4.8 step 1.
func (m *Manager) KnownCities(normalizedCity string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.catalogCities[normalizedCity]
}

// Cities returns every distinct city name known to the catalog, sorted,
// for the /api/v1/cities boundary endpoint (spec.md §6).
func (m *Manager) Cities() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.catalogCities))
	for c := range m.catalogCities {
		names = append(names, c)
	}
	sort.Strings(names)
	return names
}

// Stats returns the current state and, when a graph exists, its
// connectivity counters.
func (m *Manager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := Stats{State: m.state}
	if m.g != nil {
		s.Stats = m.g.Stats()
	}
	return s
}

// stripStaleVirtualStops drops any stop whose virtual-stop-* id does
// not match the deterministic id for its own city (schema evolution
// safety per spec.md §4.10).
func stripStaleVirtualStops(d domain.Dataset) domain.Dataset {
	keep := make([]domain.Stop, 0, len(d.Stops))
	removed := make(map[string]bool)
	for _, s := range d.Stops {
		if s.IsVirtual {
			city := domain.ExtractCityName(s)
			want := domain.VirtualStopID(city)
			if s.ID != want {
				removed[s.ID] = true
				continue
			}
		}
		keep = append(keep, s)
	}
	if len(removed) > 0 {
		logger.Warn("graphmanager: stripped stale virtual stops", "count", len(removed))
	}
	d.Stops = keep
	return d
}

// stripDanglingRoutesAndFlights drops any route or flight referencing a
// stop that no longer exists after stripStaleVirtualStops.
func stripDanglingRoutesAndFlights(d domain.Dataset) domain.Dataset {
	known := make(map[string]bool, len(d.Stops))
	for _, s := range d.Stops {
		known[s.ID] = true
	}

	routes := make([]domain.Route, 0, len(d.Routes))
	keptRouteIDs := make(map[string]bool)
	for _, r := range d.Routes {
		if known[r.FromStopID] && known[r.ToStopID] {
			routes = append(routes, r)
			keptRouteIDs[r.ID] = true
		}
	}

	flights := make([]domain.Flight, 0, len(d.Flights))
	for _, f := range d.Flights {
		if keptRouteIDs[f.Route.ID] {
			flights = append(flights, f)
		}
	}

	d.Routes = routes
	d.Flights = flights
	return d
}

// catalogCityNames collects the normalized city name of every stop in the
// dataset, independent of the graph built from it.
func catalogCityNames(d domain.Dataset) map[string]bool {
	names := make(map[string]bool, len(d.Stops))
	for _, s := range d.Stops {
		names[domain.ExtractCityName(s)] = true
	}
	return names
}

// logConnectivityHistogram logs spec.md §4.10's per-node in/out-degree
// summary and the list of under-connected nodes.
func logConnectivityHistogram(g *graph.Graph) {
	nodes := g.AllNodes()
	outDegree := make(map[string]int, len(nodes))
	inDegree := make(map[string]int, len(nodes))
	for _, n := range nodes {
		edges := g.GetEdgesFrom(n.StopID)
		outDegree[n.StopID] = len(edges)
		for _, e := range edges {
			inDegree[e.ToStopID]++
		}
	}

	var sparse []string
	for _, n := range nodes {
		if outDegree[n.StopID]+inDegree[n.StopID] < 2 {
			sparse = append(sparse, n.StopID)
		}
	}
	sort.Strings(sparse)

	logger.Info("graphmanager: connectivity histogram",
		"node_count", len(nodes),
		"sparse_node_count", len(sparse),
		"sparse_nodes", sparse)
}
