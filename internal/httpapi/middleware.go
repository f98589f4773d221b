package httpapi

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"transit/pkg/logger"
	"transit/pkg/metrics"
)

const headerRequestID = "X-Request-ID"

// requestID assigns every inbound request a correlation id, mirroring
// the teacher's WithRequestID log-context convention.
func requestID(c *fiber.Ctx) error {
	id := c.Get(headerRequestID)
	if id == "" {
		id = uuid.NewString()
	}
	c.Locals("request_id", id)
	c.Set(headerRequestID, id)
	return c.Next()
}

// requestLogger logs one line per request at the level its status
// warrants, per the teacher's structured-logging convention.
func requestLogger(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	duration := time.Since(start)

	status := c.Response().StatusCode()
	fields := []any{
		"method", c.Method(),
		"path", c.Path(),
		"status", status,
		"duration_ms", duration.Milliseconds(),
		"request_id", c.Locals("request_id"),
	}

	switch {
	case status >= 500:
		logger.Error("http: request failed", fields...)
	case status >= 400:
		logger.Warn("http: request rejected", fields...)
	default:
		logger.Info("http: request served", fields...)
	}
	return err
}

// instrumentation records every request into the C12 Prometheus
// collectors, per spec.md §4.12's http_requests_total/http_request_duration
// series.
func instrumentation(m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if m == nil {
			return c.Next()
		}
		m.HTTPRequestsInFlight.Inc()
		start := time.Now()
		err := c.Next()
		duration := time.Since(start)
		m.HTTPRequestsInFlight.Dec()

		status := strconv.Itoa(c.Response().StatusCode())
		m.RecordHTTPRequest(c.Method(), c.Route().Path, status, duration)
		return err
	}
}
