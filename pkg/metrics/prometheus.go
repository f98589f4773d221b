package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics глобальный контейнер метрик
type Metrics struct {
	// HTTP метрики
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Бизнес-метрики маршрутизации
	RouteSearchTotal      *prometheus.CounterVec
	RouteSearchDuration    *prometheus.HistogramVec
	RouteSearchAlternatives *prometheus.HistogramVec
	ErrorsTotal            *prometheus.CounterVec
	DatasetQuality         prometheus.Gauge
	GraphNodesTotal        prometheus.Gauge
	GraphEdgesTotal        prometheus.Gauge

	// Системные метрики
	MemoryUsage *prometheus.GaugeVec
	Goroutines  prometheus.Gauge

	// Информация о сервисе
	ServiceInfo *prometheus.GaugeVec
}

var defaultMetrics *Metrics

// InitMetrics инициализирует метрики, per spec.md §4.12's counter/gauge
// names (requests{mode,cacheHit}, errors{source}, quality, performance
// histograms). Grounded on the teacher's InitMetrics shape
// (promauto-constructed container, namespace/subsystem parameters);
// field names are adapted from the teacher's flow-network domain to
// route search.
func InitMetrics(namespace, subsystem string) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),

		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP requests",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2, 5},
			},
			[]string{"method", "path"},
		),

		HTTPRequestsInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "http_requests_in_flight",
				Help:      "Current number of HTTP requests being processed",
			},
		),

		RouteSearchTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "route_search_total",
				Help:      "Total number of route search requests, by dataset mode and cache hit",
			},
			[]string{"mode", "cache_hit"},
		),

		RouteSearchDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "route_search_duration_seconds",
				Help:      "Duration of route search operations (performance.p95_ms)",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2},
			},
			[]string{"mode"},
		),

		RouteSearchAlternatives: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "route_search_alternatives_count",
				Help:      "Number of alternative paths returned per search",
				Buckets:   []float64{0, 1, 2, 3, 4, 5},
			},
			[]string{"mode"},
		),

		ErrorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "errors_total",
				Help:      "Total number of errors, by originating source",
			},
			[]string{"source", "code"},
		),

		DatasetQuality: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "dataset_quality_score",
				Help:      "Most recent dataset quality score (0-100)",
			},
		),

		GraphNodesTotal: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "graph_nodes_total",
				Help:      "Number of nodes in the current in-memory graph",
			},
		),

		GraphEdgesTotal: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "graph_edges_total",
				Help:      "Number of edges in the current in-memory graph",
			},
		),

		// Системные метрики
		MemoryUsage: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "memory_usage_bytes",
				Help:      "Current memory usage",
			},
			[]string{"type"},
		),

		Goroutines: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "goroutines",
				Help:      "Current number of goroutines",
			},
		),

		ServiceInfo: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "service_info",
				Help:      "Service information",
			},
			[]string{"version", "environment"},
		),
	}

	defaultMetrics = m
	return m
}

// Get возвращает глобальные метрики
func Get() *Metrics {
	if defaultMetrics == nil {
		return InitMetrics("transit", "routing")
	}
	return defaultMetrics
}

// RecordHTTPRequest записывает метрики HTTP запроса
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordRouteSearch записывает метрики операции поиска маршрута, per
// spec.md §4.12's requests{mode,cacheHit} and performance.p95_ms
// buckets.
func (m *Metrics) RecordRouteSearch(mode string, cacheHit bool, alternatives int, duration time.Duration) {
	hit := "false"
	if cacheHit {
		hit = "true"
	}
	m.RouteSearchTotal.WithLabelValues(mode, hit).Inc()
	m.RouteSearchDuration.WithLabelValues(mode).Observe(duration.Seconds())
	m.RouteSearchAlternatives.WithLabelValues(mode).Observe(float64(alternatives))
}

// RecordError записывает ошибку по источнику и коду, per spec.md
// §4.12's errors{source} bucket.
func (m *Metrics) RecordError(source, code string) {
	m.ErrorsTotal.WithLabelValues(source, code).Inc()
}

// SetDatasetQuality записывает последний показатель качества набора
// данных, per spec.md §4.12's quality.lastN bucket.
func (m *Metrics) SetDatasetQuality(score float64) {
	m.DatasetQuality.Set(score)
}

// SetGraphSize записывает текущий размер графа
func (m *Metrics) SetGraphSize(nodes, edges int) {
	m.GraphNodesTotal.Set(float64(nodes))
	m.GraphEdgesTotal.Set(float64(edges))
}

// SetServiceInfo устанавливает информацию о сервисе
func (m *Metrics) SetServiceInfo(version, environment string) {
	m.ServiceInfo.WithLabelValues(version, environment).Set(1)
}

// Handler возвращает HTTP handler для /metrics
func Handler() http.Handler {
	return promhttp.Handler()
}

// StartMetricsServer запускает HTTP сервер для метрик
func StartMetricsServer(port int) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		// Игнорируем ошибку записи - response уже отправлен
		_, _ = w.Write([]byte("OK")) //nolint:errcheck // health endpoint, ошибка записи не критична
	})

	server := &http.Server{
		Addr:         ":" + strconv.Itoa(port),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	return server.ListenAndServe()
}
