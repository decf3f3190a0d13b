package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for site requests.
//
// Metrics collected:
//   - <ns>_requests_total: counter by method, strategy and status
//   - <ns>_request_duration_seconds: histogram by strategy
type Metrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics registers the site collectors on registry.
// A nil registry gets a fresh one, which keeps tests independent.
func NewMetrics(namespace string, registry *prometheus.Registry) *Metrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Total number of requests by resolution strategy and status",
		}, []string{"method", "strategy", "status"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Request resolution duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"strategy"}),
	}
}

// Middleware records every request after the handler chain has run
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		strategy := c.GetString(StrategyKey)
		if strategy == "" {
			strategy = "none"
		}
		m.requests.WithLabelValues(c.Request.Method, strategy, strconv.Itoa(c.Writer.Status())).Inc()
		m.duration.WithLabelValues(strategy).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, mainly for tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
