package httpapi

import "time"

// SearchResponse is the success body of GET /api/v1/routes/search, per
// spec.md §6.
type SearchResponse struct {
	Success         bool             `json:"success"`
	Routes          []RouteDTO       `json:"routes,omitempty"`
	Alternatives    []RouteDTO       `json:"alternatives,omitempty"`
	ExecutionTimeMs float64          `json:"executionTimeMs"`
	RiskAssessment  *RiskDTO         `json:"riskAssessment,omitempty"`
}

// RouteDTO is one itinerary in a search response.
type RouteDTO struct {
	Segments      []SegmentDTO `json:"segments"`
	TotalDuration float64      `json:"totalDuration"`
	TransferCount int          `json:"transferCount"`
}

// SegmentDTO is one leg of an itinerary, per spec.md §4.8 step 3's shape.
type SegmentDTO struct {
	SegmentID     string     `json:"segmentId"`
	From          string     `json:"from"`
	To            string     `json:"to"`
	TransportType string     `json:"transportType"`
	DepartureTime *time.Time `json:"departureTime,omitempty"`
	ArrivalTime   *time.Time `json:"arrivalTime,omitempty"`
	Duration      float64    `json:"duration"`
	Price         float64    `json:"price,omitempty"`
	Carrier       string     `json:"carrier,omitempty"`
	FlightNumber  string     `json:"flightNumber,omitempty"`
}

// RiskDTO is the /api/v1/routes/risk/assess response body, and the
// optional riskAssessment attached to a search response, per spec.md §6.
type RiskDTO struct {
	RouteID         string         `json:"routeId,omitempty"`
	RiskScore       RiskScoreDTO   `json:"riskScore"`
	Factors         RiskFactorsDTO `json:"factors"`
	Recommendations []string       `json:"recommendations"`
}

// RiskScoreDTO is the risk score sub-object of RiskDTO.
type RiskScoreDTO struct {
	Value       float64 `json:"value"`
	Level       string  `json:"level"`
	Description string  `json:"description"`
}

// RiskFactorsDTO reports the named factor inputs spec.md §3's
// RiskAssessment.factors object describes.
type RiskFactorsDTO struct {
	TransferCount      int      `json:"transferCount"`
	HistoricalDelays   *float64 `json:"historicalDelays,omitempty"`
	Cancellations      *float64 `json:"cancellations,omitempty"`
	Occupancy          *float64 `json:"occupancy,omitempty"`
}

// RiskAssessRequest accepts either a nested {route:{...}} body or a flat
// one, per spec.md §6's "`{route:{routeId,segments[…]}}` or flat".
type RiskAssessRequest struct {
	Route                  *RiskRouteInput `json:"route,omitempty"`
	RouteID                string          `json:"routeId,omitempty"`
	Segments                []RiskSegmentInput `json:"segments,omitempty"`
	TransferCount           *int            `json:"transferCount,omitempty"`
	AverageDelayMinutes     float64         `json:"averageDelayMinutes,omitempty"`
	DelayFrequency          float64         `json:"delayFrequency,omitempty"`
	CancellationRate90Days  float64         `json:"cancellationRate90Days,omitempty"`
	AverageOccupancy        float64         `json:"averageOccupancy,omitempty"`
}

// RiskRouteInput is the nested "route" object of a RiskAssessRequest.
type RiskRouteInput struct {
	RouteID  string             `json:"routeId"`
	Segments []RiskSegmentInput `json:"segments"`
}

// RiskSegmentInput is one segment of a RiskAssessRequest's route, only
// its presence (for counting transfers) matters at this boundary.
type RiskSegmentInput struct {
	TransportType string `json:"transportType,omitempty"`
}

// CitiesResponse is the GET /api/v1/cities success body, per spec.md §6.
type CitiesResponse struct {
	Success    bool             `json:"success"`
	Data       []string         `json:"data"`
	Pagination PaginationDTO    `json:"pagination"`
}

// PaginationDTO describes a single page of a larger collection.
type PaginationDTO struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// ErrorResponse is the uniform error body, per spec.md §6: "{error:{code,
// message, details?}}".
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody carries the error code, human message, and optional structured
// details (e.g. field-level validation errors).
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// FieldError is one entry of a validation error's details list, per
// spec.md §6: "Validation error details list `{path, message}`".
type FieldError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// HealthResponse is the /health, /health/live and /health/ready body.
type HealthResponse struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components"`
}
