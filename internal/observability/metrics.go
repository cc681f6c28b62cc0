package observability

import (
	"strconv"
	"time"

	"casemap-api/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for the case-map service.
type Metrics struct {
	MapsRendered prometheus.Counter
	TownsMatched prometheus.Gauge

	// Join coverage, one gauge per mismatch direction.
	TownsWithoutGeometry prometheus.Gauge
	FeaturesWithoutCases prometheus.Gauge

	ChoroplethBuildDuration prometheus.Histogram
	HTTPRequestDuration     *prometheus.HistogramVec // labels: route, status
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.MapsRendered,
		m.TownsMatched,
		m.TownsWithoutGeometry,
		m.FeaturesWithoutCases,
		m.ChoroplethBuildDuration,
		m.HTTPRequestDuration,
	)
	return m
}

// NewMetricsForTesting creates Metrics with unregistered collectors to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		MapsRendered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "casemap",
			Name:      "maps_rendered_total",
			Help:      "Total choropleth pages rendered.",
		}),
		TownsMatched: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "casemap",
			Name:      "towns_matched",
			Help:      "Towns whose case row matched a boundary in the last join.",
		}),
		TownsWithoutGeometry: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "casemap",
			Name:      "towns_without_geometry",
			Help:      "Case rows with no matching boundary in the last join.",
		}),
		FeaturesWithoutCases: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "casemap",
			Name:      "features_without_cases",
			Help:      "Boundaries with no matching case row in the last join.",
		}),
		ChoroplethBuildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "casemap",
			Name:      "choropleth_build_duration_seconds",
			Help:      "Duration of a complete load-join-annotate cycle.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5},
		}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "casemap",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration by route and status.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5},
		}, []string{"route", "status"}),
	}
}

// ObserveJoin records the coverage outcome of a completed join.
func (m *Metrics) ObserveJoin(report models.CoverageReport) {
	m.TownsMatched.Set(float64(report.MatchedCount))
	m.TownsWithoutGeometry.Set(float64(len(report.TownsWithoutGeometry)))
	m.FeaturesWithoutCases.Set(float64(len(report.FeaturesWithoutCases)))
}

// RequestDuration returns gin middleware that times every request.
func (m *Metrics) RequestDuration() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.HTTPRequestDuration.
			WithLabelValues(route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
