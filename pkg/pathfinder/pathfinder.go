// Package pathfinder implements the C8 Path Finder: multi-source,
// multi-target Dijkstra over the in-memory graph with deterministic
// tie-breaks, segment collapsing, and Yen-style k-shortest alternatives.
// Grounded directly on
// services/solver-svc/internal/algorithms/dijkstra.go's min-heap
// priority queue (tie-broken by node ID for determinism, periodic
// context-check loop) and on
// other_examples/…passbi_core's routing/astar.go's buildSteps (merging
// consecutive same-route edges into a single user-facing segment).
// Alternatives are generated by the edge-removal re-solve technique
// grounded on services/simulation-svc/internal/engine/resilience.go's
// N-1 analysis loop (DESIGN.md Open Question #1).
package pathfinder

import (
	"container/heap"
	"context"
	"fmt"
	"sort"
	"time"

	"transit/pkg/apperror"
	"transit/pkg/domain"
	"transit/pkg/graph"
)

// Request describes a single search per spec.md §4.8.
type Request struct {
	FromCity   string
	ToCity     string
	Date       time.Time
	Passengers int
}

// Result is the C8 output contract.
type Result struct {
	Success         bool
	Routes          []domain.Path
	Alternatives    []domain.Path
	ExecutionTimeMs float64
	GraphAvailable  bool
	Error           *apperror.Error
}

// Finder runs searches over a graph.Graph snapshot.
type Finder struct {
	kAlternatives  int
	maxReportEdges int
}

// Option configures a Finder.
type Option func(*Finder)

// WithKAlternatives sets the maximum number of alternative routes
// returned (spec.md §6's SEARCH_K_ALTERNATIVES, default 3).
func WithKAlternatives(k int) Option {
	return func(f *Finder) {
		if k >= 0 {
			f.kAlternatives = k
		}
	}
}

// New creates a Finder with spec defaults (3 alternatives).
func New(opts ...Option) *Finder {
	f := &Finder{kAlternatives: 3, maxReportEdges: 50}
	for _, o := range opts {
		o(f)
	}
	return f
}

// KnownCities reports, for a normalized city name, whether that city is
// present anywhere in the backing catalog (not necessarily the live
// graph). The path finder uses this to distinguish STOPS_NOT_FOUND
// ("city unknown to the system") from GRAPH_OUT_OF_SYNC ("city is known
// but absent from the current graph snapshot"), per spec.md §4.8 step 1.
type KnownCities func(normalizedCity string) bool

// Find executes spec.md §4.8's algorithm against g.
func (f *Finder) Find(ctx context.Context, g *graph.Graph, req Request, known KnownCities) Result {
	start := time.Now()

	if g == nil {
		return Result{
			GraphAvailable: false,
			Error:          apperror.New(apperror.CodeGraphUnavailable, "graph is not available"),
		}
	}

	// Guardrail (step 5): reject a graph carrying any invalid edge
	// weight before attempting a search.
	if audit := g.ValidateAllEdgesWeight(f.maxReportEdges); audit.TotalInvalid > 0 {
		return Result{
			GraphAvailable: true,
			ExecutionTimeMs: elapsedMs(start),
			Error: apperror.New(apperror.CodeGraphInvalid, fmt.Sprintf(
				"graph has %d invalid edge(s), refusing to search", audit.TotalInvalid)).
				WithDetails("invalid_edge_count", audit.TotalInvalid),
		}
	}

	fromNorm := domain.NormalizeCityName(req.FromCity)
	toNorm := domain.NormalizeCityName(req.ToCity)

	fromNodes := g.FindNodesByCity(fromNorm)
	toNodes := g.FindNodesByCity(toNorm)

	if len(fromNodes) == 0 {
		return f.notFoundResult(start, req.FromCity, fromNorm, known)
	}
	if len(toNodes) == 0 {
		return f.notFoundResult(start, req.ToCity, toNorm, known)
	}

	primary, _, ok := f.search(ctx, g, fromNodes, toNodes)
	if !ok {
		return Result{
			GraphAvailable:  true,
			ExecutionTimeMs: elapsedMs(start),
			Error:           apperror.New(apperror.CodeRoutesNotFound, fmt.Sprintf("no route found from %s to %s", req.FromCity, req.ToCity)),
		}
	}

	alternatives := f.alternatives(ctx, g, fromNodes, toNodes, primary)

	return Result{
		Success:         true,
		Routes:          []domain.Path{primary},
		Alternatives:    alternatives,
		ExecutionTimeMs: elapsedMs(start),
		GraphAvailable:  true,
	}
}

func (f *Finder) notFoundResult(start time.Time, cityInput, normalized string, known KnownCities) Result {
	if known != nil && known(normalized) {
		return Result{
			GraphAvailable:  true,
			ExecutionTimeMs: elapsedMs(start),
			Error: apperror.New(apperror.CodeGraphOutOfSync, fmt.Sprintf(
				"graph is out of sync: city %q has known stops missing from the current graph snapshot", cityInput)),
		}
	}
	return Result{
		GraphAvailable:  true,
		ExecutionTimeMs: elapsedMs(start),
		Error:           apperror.New(apperror.CodeStopsNotFound, fmt.Sprintf("No stops found for city: %s", cityInput)),
	}
}

func elapsedMs(start time.Time) float64 {
	return float64(time.Since(start)) / float64(time.Millisecond)
}

// heapItem is a min-heap entry, tie-broken by stop ID for determinism,
// matching the teacher's priorityQueueItem convention.
type heapItem struct {
	stopID   string
	distance float64
	segments int
}

type minHeap []*heapItem

func (h minHeap) Len() int { return len(h) }
func (h minHeap) Less(i, j int) bool {
	if h[i].distance != h[j].distance {
		return h[i].distance < h[j].distance
	}
	if h[i].segments != h[j].segments {
		return h[i].segments < h[j].segments
	}
	return h[i].stopID < h[j].stopID
}
func (h minHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *minHeap) Push(x any)   { *h = append(*h, x.(*heapItem)) }
func (h *minHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

// search runs a multi-source, multi-target Dijkstra from every node in
// fromNodes, terminating as soon as any node in toNodes is popped.
// Edges whose keys are listed in excluded are skipped; alternatives()
// calls searchExcluding directly with its accumulated exclusion set.
func (f *Finder) search(ctx context.Context, g *graph.Graph, fromNodes, toNodes []domain.GraphNode, excluded ...string) (domain.Path, map[string]string, bool) {
	var ex map[string]bool
	if len(excluded) > 0 {
		ex = make(map[string]bool, len(excluded))
		for _, k := range excluded {
			ex[k] = true
		}
	}
	return f.searchExcluding(ctx, g, fromNodes, toNodes, ex)
}

func (f *Finder) searchExcluding(ctx context.Context, g *graph.Graph, fromNodes, toNodes []domain.GraphNode, excludedEdges map[string]bool) (domain.Path, map[string]string, bool) {
	targetSet := make(map[string]bool, len(toNodes))
	for _, n := range toNodes {
		targetSet[n.StopID] = true
	}

	dist := make(map[string]float64)
	segCount := make(map[string]int)
	parent := make(map[string]string)
	parentEdge := make(map[string]domain.GraphEdge)
	visited := make(map[string]bool)

	h := &minHeap{}
	heap.Init(h)
	for _, n := range fromNodes {
		dist[n.StopID] = 0
		segCount[n.StopID] = 0
		heap.Push(h, &heapItem{stopID: n.StopID, distance: 0, segments: 0})
	}

	const checkInterval = 256
	iterations := 0

	for h.Len() > 0 {
		if iterations%checkInterval == 0 {
			select {
			case <-ctx.Done():
				return domain.Path{}, nil, false
			default:
			}
		}
		iterations++

		current := heap.Pop(h).(*heapItem)
		u := current.stopID
		if visited[u] {
			continue
		}
		if current.distance > dist[u]+domain.Epsilon {
			continue
		}
		visited[u] = true

		if targetSet[u] {
			return f.reconstruct(u, parent, parentEdge, dist[u]), parent, true
		}

		for _, e := range g.GetEdgesFrom(u) {
			if excludedEdges != nil && excludedEdges[edgeKey(e)] {
				continue
			}
			v := e.ToStopID
			if visited[v] {
				continue
			}
			newDist := dist[u] + e.Weight
			if existing, ok := dist[v]; !ok || newDist < existing-domain.Epsilon {
				dist[v] = newDist
				segCount[v] = segCount[u] + 1
				parent[v] = u
				parentEdge[v] = e
				heap.Push(h, &heapItem{stopID: v, distance: newDist, segments: segCount[v]})
			}
		}
	}

	return domain.Path{}, nil, false
}

func edgeKey(e domain.GraphEdge) string {
	return e.FromStopID + "|" + e.ToStopID + "|" + e.RouteID
}

// reconstruct walks parent pointers from target back to its source and
// collapses consecutive edges sharing a RouteID into one segment, per
// spec.md §4.8 step 3.
func (f *Finder) reconstruct(target string, parent map[string]string, parentEdge map[string]domain.GraphEdge, totalWeight float64) domain.Path {
	var edges []domain.GraphEdge
	for cur := target; ; {
		e, ok := parentEdge[cur]
		if !ok {
			break
		}
		edges = append(edges, e)
		cur = parent[cur]
	}
	// edges were collected target->source; reverse to source->target.
	for i, j := 0, len(edges)-1; i < j; i, j = i+1, j-1 {
		edges[i], edges[j] = edges[j], edges[i]
	}

	path := domain.Path{TotalWeight: totalWeight}
	var current *domain.PathSegment

	for _, e := range edges {
		sameRoute := current != nil && e.RouteID != "" && current.RouteIDs != nil &&
			len(current.RouteIDs) > 0 && current.RouteIDs[len(current.RouteIDs)-1] == e.RouteID &&
			current.Transport == lowerTransport(e.Transport)

		if sameRoute {
			current.ToStopID = e.ToStopID
			current.Duration += time.Duration(e.Weight * float64(time.Minute))
			current.DistanceKm += e.DistanceKm
			continue
		}

		if current != nil {
			path.Segments = append(path.Segments, *current)
		}

		seg := domain.PathSegment{
			SegmentID:  fmt.Sprintf("seg-%d", len(path.Segments)+1),
			Transport:  lowerTransport(e.Transport),
			FromStopID: e.FromStopID,
			ToStopID:   e.ToStopID,
			Duration:   time.Duration(e.Weight * float64(time.Minute)),
			DistanceKm: e.DistanceKm,
		}
		if e.RouteID != "" {
			seg.RouteIDs = []string{e.RouteID}
		}
		current = &seg
	}
	if current != nil {
		path.Segments = append(path.Segments, *current)
	}

	path.TransferCount = maxInt(0, len(path.Segments)-1)
	path.TotalDuration = sumDurations(path.Segments)
	return path
}

func sumDurations(segs []domain.PathSegment) time.Duration {
	var total time.Duration
	for _, s := range segs {
		total += s.Duration
	}
	return total
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// lowerTransport lower-cases transport type constants, matching
// spec.md §4.8 step 3's "PLANE→airplane, BUS→bus" normalization. Our
// domain.TransportType constants are already lowercase, and "plane" is
// the internal name for what the spec calls "airplane" externally.
func lowerTransport(t domain.TransportType) domain.TransportType {
	if t == domain.TransportPlane {
		return "airplane"
	}
	return t
}

// alternatives implements spec.md §4.8 step 4: up to kAlternatives
// additional routes, found by removing the highest-weight edge of the
// most recently found path (removals accumulate) and re-solving, keeping only results with a
// distinct stop-sequence composition, sorted ascending by duration.
func (f *Finder) alternatives(ctx context.Context, g *graph.Graph, fromNodes, toNodes []domain.GraphNode, primary domain.Path) []domain.Path {
	if f.kAlternatives <= 0 {
		return nil
	}

	seen := map[string]bool{signature(primary): true}
	excluded := make(map[string]bool)
	var results []domain.Path

	candidate := primary
	for len(results) < f.kAlternatives {
		key := worstEdgeKey(candidate)
		if key == "" || excluded[key] {
			break
		}
		excluded[key] = true

		next, _, ok := f.searchExcluding(ctx, g, fromNodes, toNodes, excluded)
		if !ok {
			break
		}
		sig := signature(next)
		if !seen[sig] {
			seen[sig] = true
			results = append(results, next)
		}
		candidate = next
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].TotalDuration < results[j].TotalDuration
	})
	return results
}

// worstEdgeKey returns the key of the highest-weight edge implied by
// path's segments, the edge removed to force a diversified re-solve.
func worstEdgeKey(path domain.Path) string {
	var worstKey string
	var worstWeight float64
	for _, seg := range path.Segments {
		w := seg.Duration.Minutes()
		if w > worstWeight {
			worstWeight = w
			routeID := ""
			if len(seg.RouteIDs) > 0 {
				routeID = seg.RouteIDs[0]
			}
			worstKey = seg.FromStopID + "|" + seg.ToStopID + "|" + routeID
		}
	}
	return worstKey
}

// signature identifies a path by its ordered stop sequence, used to
// dedupe alternatives that happen to tie on duration but take the same
// route, or to discard a re-solve that degenerates back to the primary.
func signature(path domain.Path) string {
	s := ""
	for _, seg := range path.Segments {
		s += seg.FromStopID + ">" + seg.ToStopID + ";"
	}
	return s
}
