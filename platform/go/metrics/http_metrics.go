package metrics

import (
	"net/http"
	"strconv"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	requestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"service", "method", "path", "status"},
	)

	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "method", "path", "status"},
	)
)

// HTTPMetrics records per-request counters and latencies for one service.
type HTTPMetrics struct {
	ServiceName string
}

var registered = false

// NewHTTPMetrics creates the collector and registers the metric vectors on
// first use.
func NewHTTPMetrics(serviceName string) *HTTPMetrics {
	if !registered {
		prometheus.MustRegister(requestCounter, requestDuration)
		registered = true
	}
	return &HTTPMetrics{ServiceName: serviceName}
}

// Middleware wraps a handler and records counters and durations per route.
func (m *HTTPMetrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := strconv.Itoa(ww.Status())
		requestCounter.WithLabelValues(m.ServiceName, r.Method, r.URL.Path, status).Inc()
		requestDuration.WithLabelValues(m.ServiceName, r.Method, r.URL.Path, status).Observe(time.Since(start).Seconds())
	})
}

// Handler exposes the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
