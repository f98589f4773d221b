package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Span attribute keys shared across the route-search pipeline.
const (
	// Graph (C7)
	AttrGraphNodes        = "graph.nodes"
	AttrGraphEdges        = "graph.edges"
	AttrGraphVirtualNodes = "graph.virtual_nodes"
	AttrGraphState        = "graph.state"

	// Path search (C8)
	AttrSearchFromCity    = "search.from_city"
	AttrSearchToCity      = "search.to_city"
	AttrSearchSuccess     = "search.success"
	AttrSearchDurationMs  = "search.duration_ms"
	AttrSearchAlternatives = "search.alternatives_count"
	AttrSearchErrorCode   = "search.error_code"

	// Quality / recovery (C1/C2)
	AttrDatasetMode    = "dataset.mode"
	AttrDatasetQuality = "dataset.quality_score"
	AttrRecoveryStep   = "recovery.step"
	AttrRecoveryCount  = "recovery.count"

	// Risk (C9)
	AttrRiskScore = "risk.score"
	AttrRiskLevel = "risk.level"

	// Cache (C4)
	AttrCacheHit = "cache.hit"
	AttrCacheKey = "cache.key"
)

// GraphAttributes describes the in-memory graph a span operated on.
func GraphAttributes(nodes, edges, virtualNodes int, state string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(AttrGraphNodes, nodes),
		attribute.Int(AttrGraphEdges, edges),
		attribute.Int(AttrGraphVirtualNodes, virtualNodes),
		attribute.String(AttrGraphState, state),
	}
}

// SearchAttributes describes a single path-finder invocation.
func SearchAttributes(fromCity, toCity string, success bool, durationMs float64, alternatives int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrSearchFromCity, fromCity),
		attribute.String(AttrSearchToCity, toCity),
		attribute.Bool(AttrSearchSuccess, success),
		attribute.Float64(AttrSearchDurationMs, durationMs),
		attribute.Int(AttrSearchAlternatives, alternatives),
	}
}

// DatasetAttributes describes the dataset backing the current graph.
func DatasetAttributes(mode string, quality float64) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrDatasetMode, mode),
		attribute.Float64(AttrDatasetQuality, quality),
	}
}

// RiskAttributes describes a single risk assessment.
func RiskAttributes(score float64, level string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Float64(AttrRiskScore, score),
		attribute.String(AttrRiskLevel, level),
	}
}

// CacheAttributes describes a single dataset cache lookup.
func CacheAttributes(key string, hit bool) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrCacheKey, key),
		attribute.Bool(AttrCacheHit, hit),
	}
}
