// Package httpapi is the thin HTTP/JSON controller layer documented,
// but explicitly out of core scope, by spec.md §6: it translates fiber
// requests into calls against the graph manager (C10), path finder (C8)
// and risk scorer (C9), and translates their results back into the
// documented wire shapes. Grounded on
// other_examples/…passbi_core/internal/api/handlers.go's handler
// style (query parsing, fiber.Map-free typed response structs,
// status-code-per-error-kind) adapted from passbi_core's raw
// lat/lon query API to this service's city/date/passenger search API.
package httpapi

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"transit/pkg/apperror"
	"transit/pkg/cache"
	"transit/pkg/domain"
	"transit/pkg/graphmanager"
	"transit/pkg/pathfinder"
	"transit/pkg/riskscorer"
	"transit/pkg/telemetry"
)

const dateLayout = "2006-01-02"

// Handler binds the documented HTTP boundary to the in-process core: the
// graph manager (C10), the path finder (C8), and the pure risk scorer
// (C9). It holds no state of its own.
type Handler struct {
	graphManager  *graphmanager.Manager
	finder        *pathfinder.Finder
	searchTimeout time.Duration
	db            dbHealthChecker
	cacheBackend  cacheHealthChecker
}

// dbHealthChecker is the subset of pkg/database.PostgresDB the /health
// boundary needs; nil-able so this service can run without Postgres
// configured.
type dbHealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// cacheHealthChecker is the subset of pkg/cache.Cache the /health
// boundary needs.
type cacheHealthChecker interface {
	Stats(ctx context.Context) (*cache.Stats, error)
}

// NewHandler wires a Handler. db and cacheBackend may be nil.
func NewHandler(gm *graphmanager.Manager, finder *pathfinder.Finder, searchTimeout time.Duration, db dbHealthChecker, cacheBackend cacheHealthChecker) *Handler {
	return &Handler{
		graphManager:  gm,
		finder:        finder,
		searchTimeout: searchTimeout,
		db:            db,
		cacheBackend:  cacheBackend,
	}
}

// SearchRoutes handles GET /api/v1/routes/search, per spec.md §6.
func (h *Handler) SearchRoutes(c *fiber.Ctx) error {
	from := strings.TrimSpace(c.Query("from"))
	to := strings.TrimSpace(c.Query("to"))

	var fields []FieldError
	if from == "" {
		fields = append(fields, FieldError{Path: "from", Message: "from is required"})
	}
	if to == "" {
		fields = append(fields, FieldError{Path: "to", Message: "to is required"})
	}

	date := time.Now().UTC()
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			fields = append(fields, FieldError{Path: "date", Message: "date must be formatted YYYY-MM-DD"})
		} else {
			date = parsed
		}
	}

	passengers := c.QueryInt("passengers", 1)
	if passengers < 1 || passengers > 9 {
		fields = append(fields, FieldError{Path: "passengers", Message: "passengers must be between 1 and 9"})
	}

	if len(fields) > 0 {
		return writeValidationError(c, fields...)
	}

	ctx, cancel := context.WithTimeout(c.Context(), h.searchTimeout)
	defer cancel()

	ctx, span := telemetry.StartSpan(ctx, "httpapi.SearchRoutes")
	defer span.End()

	g, err := h.graphManager.GetGraph(ctx)
	if err != nil {
		return writeAppError(c, toAppError(err, apperror.CodeGraphUnavailable))
	}

	result := h.finder.Find(ctx, g, pathfinder.Request{
		FromCity:   from,
		ToCity:     to,
		Date:       date,
		Passengers: passengers,
	}, h.graphManager.KnownCities)

	telemetry.SetAttributes(ctx, telemetry.SearchAttributes(from, to, result.Success, result.ExecutionTimeMs, len(result.Alternatives))...)

	if !result.Success {
		if result.Error == nil {
			result.Error = apperror.New(apperror.CodeGraphUnavailable, "search failed for an unknown reason")
		}
		return writeAppError(c, result.Error)
	}

	resp := SearchResponse{
		Success:         true,
		ExecutionTimeMs: result.ExecutionTimeMs,
	}
	for _, p := range result.Routes {
		resp.Routes = append(resp.Routes, pathToDTO(p))
	}
	for _, p := range result.Alternatives {
		resp.Alternatives = append(resp.Alternatives, pathToDTO(p))
	}
	if len(result.Routes) > 0 {
		assessment := riskscorer.Assess(result.Routes[0].TransferCount, riskscorer.HistoricalFactors{})
		dto := riskToDTO("", assessment)
		resp.RiskAssessment = &dto
	}

	return c.JSON(resp)
}

// AssessRisk handles POST /api/v1/routes/risk/assess, per spec.md §6.
func (h *Handler) AssessRisk(c *fiber.Ctx) error {
	var req RiskAssessRequest
	if err := c.BodyParser(&req); err != nil {
		return writeValidationError(c, FieldError{Path: "body", Message: "request body must be valid JSON"})
	}

	routeID := req.RouteID
	var segmentCount int
	switch {
	case req.Route != nil:
		if req.Route.RouteID != "" {
			routeID = req.Route.RouteID
		}
		segmentCount = len(req.Route.Segments)
	case req.Segments != nil:
		segmentCount = len(req.Segments)
	}

	transferCount := maxInt(0, segmentCount-1)
	if req.TransferCount != nil {
		transferCount = *req.TransferCount
	}
	if transferCount < 0 {
		return writeValidationError(c, FieldError{Path: "transferCount", Message: "transferCount must not be negative"})
	}

	hist := riskscorer.HistoricalFactors{
		AverageDelayMinutes: req.AverageDelayMinutes,
		DelayFrequency:      req.DelayFrequency,
		CancellationRate:    req.CancellationRate90Days,
		AverageOccupancy:    req.AverageOccupancy,
	}

	assessment := riskscorer.Assess(transferCount, hist)
	telemetry.SetAttributes(c.Context(), telemetry.RiskAttributes(assessment.Score, string(assessment.Level))...)

	return c.JSON(riskToDTO(routeID, assessment))
}

// ListCities handles GET /api/v1/cities, per spec.md §6.
func (h *Handler) ListCities(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 20)

	if page < 1 {
		return writeValidationError(c, FieldError{Path: "page", Message: "page must be >= 1"})
	}
	if limit < 1 || limit > 100 {
		return writeValidationError(c, FieldError{Path: "limit", Message: "limit must be between 1 and 100"})
	}

	cities := h.graphManager.Cities()
	total := len(cities)
	totalPages := int(math.Ceil(float64(total) / float64(limit)))

	start := (page - 1) * limit
	end := start + limit
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	page_ := cities[start:end]
	if page_ == nil {
		page_ = []string{}
	}

	return c.JSON(CitiesResponse{
		Success: true,
		Data:    page_,
		Pagination: PaginationDTO{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: totalPages,
		},
	})
}

// Health handles GET /health: an aggregate of every configured
// dependency's status.
func (h *Handler) Health(c *fiber.Ctx) error {
	components := make(map[string]string)
	status := "healthy"

	stats := h.graphManager.Stats()
	components["graph"] = string(stats.State)
	if stats.State != domain.GraphReady {
		status = "degraded"
	}

	if h.db != nil {
		if err := h.db.HealthCheck(c.Context()); err != nil {
			components["database"] = "unhealthy: " + err.Error()
			status = "degraded"
		} else {
			components["database"] = "healthy"
		}
	}

	if h.cacheBackend != nil {
		if _, err := h.cacheBackend.Stats(c.Context()); err != nil {
			components["cache"] = "unhealthy: " + err.Error()
			status = "degraded"
		} else {
			components["cache"] = "healthy"
		}
	}

	httpStatus := fiber.StatusOK
	if status != "healthy" {
		httpStatus = fiber.StatusServiceUnavailable
	}
	return c.Status(httpStatus).JSON(HealthResponse{Status: status, Components: components})
}

// Live handles GET /health/live: the process is up and serving requests.
// It never checks collaborators, per the liveness/readiness split.
func (h *Handler) Live(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{Status: "ok", Components: map[string]string{"process": "running"}})
}

// Ready handles GET /health/ready: the graph manager must be Ready (or
// able to become Ready within the request's deadline) before this
// service accepts search traffic.
func (h *Handler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), h.searchTimeout)
	defer cancel()

	if _, err := h.graphManager.GetGraph(ctx); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(HealthResponse{
			Status:     "not_ready",
			Components: map[string]string{"graph": err.Error()},
		})
	}
	return c.JSON(HealthResponse{Status: "ready", Components: map[string]string{"graph": "ready"}})
}

func pathToDTO(p domain.Path) RouteDTO {
	dto := RouteDTO{
		TotalDuration: p.TotalDuration.Minutes(),
		TransferCount: p.TransferCount,
	}
	for _, s := range p.Segments {
		dto.Segments = append(dto.Segments, SegmentDTO{
			SegmentID:     s.SegmentID,
			From:          s.FromStopID,
			To:            s.ToStopID,
			TransportType: string(s.Transport),
			DepartureTime: s.DepartureTime,
			ArrivalTime:   s.ArrivalTime,
			Duration:      s.Duration.Minutes(),
			Price:         s.Price,
			Carrier:       s.Carrier,
			FlightNumber:  s.FlightNumber,
		})
	}
	return dto
}

func riskToDTO(routeID string, a domain.RiskAssessment) RiskDTO {
	factors := RiskFactorsDTO{}
	for _, f := range a.Factors {
		v := f.Value
		switch f.Name {
		case "transfer_count":
			factors.TransferCount = int(v)
		case "average_delay_minutes":
			factors.HistoricalDelays = &v
		case "cancellation_rate_90d":
			factors.Cancellations = &v
		case "average_occupancy":
			factors.Occupancy = &v
		}
	}
	return RiskDTO{
		RouteID: routeID,
		RiskScore: RiskScoreDTO{
			Value:       a.Score,
			Level:       string(a.Level),
			Description: riskscorer.Description(a.Level),
		},
		Factors:         factors,
		Recommendations: a.Recommendations,
	}
}

// toAppError coerces err into an *apperror.Error, defaulting to code if
// it is not already one (e.g. a raw error from graphmanager).
func toAppError(err error, code apperror.ErrorCode) *apperror.Error {
	if ae, ok := err.(*apperror.Error); ok {
		return ae
	}
	return apperror.New(code, err.Error())
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
