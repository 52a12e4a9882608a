package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_http_requests_total",
			Help: "Total number of gateway HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storefront_http_request_duration_seconds",
			Help:    "Gateway HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	backendRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_backend_requests_total",
			Help: "Total number of requests issued to the commerce backend",
		},
		[]string{"method", "path", "status"},
	)

	backendRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storefront_backend_request_duration_seconds",
			Help:    "Commerce backend request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	pushEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_push_events_total",
			Help: "Total number of events received on the push channel",
		},
		[]string{"event"},
	)

	staleResponsesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_stale_responses_total",
			Help: "Responses dropped because a newer request was issued on the same slice",
		},
		[]string{"slice"},
	)

	activeSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "storefront_active_sessions",
			Help: "Number of live storefront sessions",
		},
	)
)

func init() {
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(httpRequestDuration)
	prometheus.MustRegister(backendRequestsTotal)
	prometheus.MustRegister(backendRequestDuration)
	prometheus.MustRegister(pushEventsTotal)
	prometheus.MustRegister(staleResponsesTotal)
	prometheus.MustRegister(activeSessions)
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		duration := time.Since(start).Seconds()

		httpRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, path).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}

// ObserveBackend records one backend round-trip. status is 0 when no response arrived.
func ObserveBackend(method, path string, status int, elapsed time.Duration) {
	backendRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	backendRequestDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}

func RecordPushEvent(event string) {
	pushEventsTotal.WithLabelValues(event).Inc()
}

func RecordStaleResponse(slice string) {
	staleResponsesTotal.WithLabelValues(slice).Inc()
}

func SessionStarted() { activeSessions.Inc() }

func SessionEnded() { activeSessions.Dec() }
