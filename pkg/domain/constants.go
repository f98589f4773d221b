// Package domain holds the core data model shared by every layer of the
// route-search service: stops, routes, flights, datasets, graph primitives
// and the quality/risk value objects derived from them.
package domain

import "math"

// Epsilon is the tolerance used for floating point comparisons across
// weight, coordinate and score calculations.
const Epsilon = 1e-9

// Infinity represents an unreachable distance in path-finding.
const Infinity = math.MaxFloat64

// TransportType enumerates the supported modes of transport.
type TransportType string

const (
	TransportBus   TransportType = "bus"
	TransportPlane TransportType = "plane"
	TransportTrain TransportType = "train"
	TransportFerry TransportType = "ferry"
	TransportTaxi  TransportType = "taxi"
	TransportWalk  TransportType = "walk"
	TransportTransfer TransportType = "transfer"
)

// DatasetMode describes which data source currently backs the graph.
type DatasetMode string

const (
	ModeReal     DatasetMode = "real"
	ModeRecovery DatasetMode = "recovery"
	ModeMock     DatasetMode = "mock"
)

// GraphState describes the lifecycle of the in-memory graph manager (C10).
type GraphState string

const (
	GraphUninitialized GraphState = "uninitialized"
	GraphInitializing  GraphState = "initializing"
	GraphReady         GraphState = "ready"
	GraphStale         GraphState = "stale"
)

// Quality score thresholds (overridable via config, these are the defaults
// used when configuration does not set QUALITY_THRESHOLD_REAL/RECOVERY).
const (
	DefaultQualityThresholdReal     = 0.85
	DefaultQualityThresholdRecovery = 0.40
)

// MaxVirtualMeshNodes bounds the O(n^2) full virtual-stop mesh; beyond this
// many virtual stops a hub-and-spoke star is built instead (see DESIGN.md
// Open Question #4).
const MaxVirtualMeshNodes = 500

// Default average speeds (km/h) per transport type. No package reads this
// table; the recovery service (C2) uses its own per-type duration
// templates and a fixed 60 km/h speed for virtual mesh routes.
var DefaultAverageSpeedKmh = map[TransportType]float64{
	TransportBus:   45,
	TransportPlane: 700,
	TransportTrain: 60,
	TransportFerry: 30,
	TransportTaxi:  50,
}

// TransferPenaltyMinutes is a fixed per-transfer cost in minutes. No
// package reads it; the graph builder (C6) weighs its TRANSFER edges at
// 90 minutes instead.
const TransferPenaltyMinutes = 15.0

// FloatEquals reports whether a and b are within Epsilon of each other.
func FloatEquals(a, b float64) bool {
	return math.Abs(a-b) < Epsilon
}

// FloatLess reports whether a is strictly less than b, beyond Epsilon.
func FloatLess(a, b float64) bool {
	return b-a > Epsilon
}

// IsPositive reports whether v is positive beyond Epsilon.
func IsPositive(v float64) bool {
	return v > Epsilon
}
