package domain

import "time"

// Coordinates is a WGS84 latitude/longitude pair.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether the coordinates fall within legal ranges.
func (c Coordinates) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

// IsZero reports whether the coordinates were never set.
func (c Coordinates) IsZero() bool {
	return c.Lat == 0 && c.Lon == 0
}

// Stop is a boardable point in the network: a bus stop, train station,
// airport, ferry pier or taxi rank.
type Stop struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	City        string        `json:"city"`
	Coordinates Coordinates   `json:"coordinates"`
	Transport   TransportType `json:"transport"`
	IsVirtual   bool          `json:"is_virtual"`
	SourceID    string        `json:"source_id,omitempty"`
}

// Route is a scheduled service between two stops on a single transport
// mode. A multi-stop line is represented as one Route per consecutive
// stop pair, matching passbi_core's ride-edge-per-stop-pair model.
type Route struct {
	ID              string        `json:"id"`
	FromStopID      string        `json:"from_stop_id"`
	ToStopID        string        `json:"to_stop_id"`
	Transport       TransportType `json:"transport"`
	Operator        string        `json:"operator,omitempty"`
	DepartureOffset time.Duration `json:"departure_offset"`
	Duration        time.Duration `json:"duration"`
	DistanceKm      float64       `json:"distance_km"`
	Price           float64       `json:"price,omitempty"`
	IsVirtual       bool          `json:"is_virtual"`
	SourceID        string        `json:"source_id,omitempty"`
}

// Flight is a plane-specific route augmented with airline metadata used by
// the risk scorer (C9) for cancellation/delay history.
type Flight struct {
	Route
	FlightNumber    string  `json:"flight_number"`
	Airline         string  `json:"airline"`
	CancellationRate90d float64 `json:"cancellation_rate_90d"`
	AverageDelayMinutes float64 `json:"average_delay_minutes"`
	AverageOccupancy    float64 `json:"average_occupancy"`
}

// RawDataset is the unprocessed payload returned by a C3 data-source
// provider before quality validation or recovery.
type RawDataset struct {
	SourceName string
	FetchedAt  time.Time
	Stops      []Stop
	Routes     []Route
	Flights    []Flight
}

// Dataset is a versioned, content-addressed snapshot of the network data
// that backs the in-memory graph, persisted by C4/C11.
type Dataset struct {
	ID          string      `json:"id"`
	ContentHash string      `json:"content_hash"`
	Mode        DatasetMode `json:"mode"`
	Quality     float64     `json:"quality"`
	Stops       []Stop      `json:"stops"`
	Routes      []Route     `json:"routes"`
	Flights     []Flight    `json:"flights"`
	FetchedAt   time.Time   `json:"fetched_at"`
	CreatedAt   time.Time   `json:"created_at"`
}

// CategoryScore is the per-category component of a QualityReport.
type CategoryScore struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
	Total int     `json:"total"`
	Valid int     `json:"valid"`
}

// QualityReport is the output of the C1 Quality Validator.
type QualityReport struct {
	OverallScore    float64         `json:"overall_score"`
	Categories      []CategoryScore `json:"categories"`
	Recommendations []string        `json:"recommendations"`
	ShouldRecover   bool            `json:"should_recover"`
	Mode            DatasetMode     `json:"mode"`
}

// GraphNode is a node of the in-memory path-search graph (C7), one per
// Stop. Node identity is the Stop ID.
type GraphNode struct {
	StopID      string
	City        string
	Coordinates Coordinates
	IsVirtual   bool
}

// GraphEdge is a directed, weighted edge of the in-memory graph.
type GraphEdge struct {
	FromStopID string
	ToStopID   string
	RouteID    string
	Transport  TransportType
	Weight     float64 // minutes, including any fixed transfer penalty
	DistanceKm float64
}

// RiskFactor is a single named contributor to a RiskAssessment.
type RiskFactor struct {
	Name   string  `json:"name"`
	Value  float64 `json:"value"`
	Weight float64 `json:"weight"`
}

// RiskLevel buckets a risk score into a human-facing category, per
// spec.md §4.9's five fixed bands (value<=2 very-low ... value>8
// very-high).
type RiskLevel string

const (
	RiskVeryLow  RiskLevel = "very_low"
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskVeryHigh RiskLevel = "very_high"
)

// RiskAssessment is the output of the C9 Risk Scorer for a single path.
type RiskAssessment struct {
	Score           float64      `json:"score"`
	Level           RiskLevel    `json:"level"`
	Factors         []RiskFactor `json:"factors"`
	Recommendations []string     `json:"recommendations"`
}

// PathSegment is one leg of a found path: either a ride on a single route
// (possibly spanning several consecutive Route records on the same route
// family, collapsed into one segment) or a transfer between stops.
type PathSegment struct {
	SegmentID     string        `json:"segment_id"`
	Transport     TransportType `json:"transport"`
	FromStopID    string        `json:"from_stop_id"`
	ToStopID      string        `json:"to_stop_id"`
	RouteIDs      []string      `json:"route_ids,omitempty"`
	Duration      time.Duration `json:"duration"`
	DistanceKm    float64       `json:"distance_km"`
	DepartureTime *time.Time    `json:"departure_time,omitempty"`
	ArrivalTime   *time.Time    `json:"arrival_time,omitempty"`
	Price         float64       `json:"price,omitempty"`
	Carrier       string        `json:"carrier,omitempty"`
	FlightNumber  string        `json:"flight_number,omitempty"`
}

// Path is a complete source-to-destination itinerary found by C8.
type Path struct {
	Segments      []PathSegment `json:"segments"`
	TotalWeight   float64       `json:"total_weight"`
	TotalDuration time.Duration `json:"total_duration"`
	TransferCount int           `json:"transfer_count"`
}
