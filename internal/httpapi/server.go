package httpapi

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"transit/pkg/config"
	"transit/pkg/metrics"
)

// NewServer builds the fiber app documented by spec.md §6: the four
// route-search/risk/cities/health endpoint groups, CORS and recovery
// middleware, request logging, and a Prometheus scrape endpoint.
// Grounded on passbi_core/internal/api's route-group registration
// style, adapted from its ride-matching routes to this service's
// itinerary-search routes.
func NewServer(h *Handler, cfg config.HTTPConfig, m *metrics.Metrics) *fiber.App {
	app := fiber.New(fiber.Config{
		ReadTimeout:           cfg.ReadTimeout,
		WriteTimeout:          cfg.WriteTimeout,
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(requestID)
	app.Use(requestLogger)
	app.Use(instrumentation(m))

	if cfg.CORS.Enabled {
		app.Use(cors.New(cors.Config{
			AllowOrigins:     joinOrDefault(cfg.CORS.AllowedOrigins, "*"),
			AllowMethods:     joinOrDefault(cfg.CORS.AllowedMethods, "GET,POST,OPTIONS"),
			AllowHeaders:     joinOrDefault(cfg.CORS.AllowedHeaders, "Origin,Content-Type,Accept"),
			AllowCredentials: cfg.CORS.AllowCredentials,
			MaxAge:           cfg.CORS.MaxAge,
		}))
	}

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	app.Get("/health", h.Health)
	app.Get("/health/live", h.Live)
	app.Get("/health/ready", h.Ready)

	api := app.Group("/api/v1")
	api.Get("/routes/search", h.SearchRoutes)
	api.Post("/routes/risk/assess", h.AssessRisk)
	api.Get("/cities", h.ListCities)

	return app
}

func joinOrDefault(values []string, fallback string) string {
	if len(values) == 0 {
		return fallback
	}
	out := values[0]
	for _, v := range values[1:] {
		out += "," + v
	}
	return out
}
