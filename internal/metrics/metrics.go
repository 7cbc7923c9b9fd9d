// Package metrics provides Prometheus metrics for the workspace manager.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workspacemanager_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "pattern", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "workspacemanager_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "pattern"},
	)

	visibilityOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workspacemanager_visibility_operations_total",
			Help: "Show/hide/reset operations by outcome",
		},
		[]string{"operation", "status"},
	)

	excludeEditsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "workspacemanager_exclude_edits_total",
			Help: "Exclude-map edits merged into the settings store",
		},
	)

	profileOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workspacemanager_profile_operations_total",
			Help: "Profile operations by outcome",
		},
		[]string{"operation", "status"},
	)

	directoryListingsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "workspacemanager_directory_listings_total",
			Help: "Directories listed from the filesystem",
		},
	)

	treeNodes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "workspacemanager_tree_nodes",
			Help: "Materialized file tree nodes",
		},
	)

	sseConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "workspacemanager_sse_connections_active",
			Help: "Open event stream connections",
		},
	)

	eventsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workspacemanager_events_published_total",
			Help: "Change events published to subscribers",
		},
		[]string{"type"},
	)
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordHTTPRequest records an HTTP request metric.
func RecordHTTPRequest(method, pattern string, status int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, pattern, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, pattern).Observe(duration.Seconds())
}

// RecordVisibilityOperation records a show/hide/hide-siblings/reset call and its edit count.
func RecordVisibilityOperation(operation string, edits int, err error) {
	visibilityOperationsTotal.WithLabelValues(operation, status(err)).Inc()
	if err == nil {
		excludeEditsTotal.Add(float64(edits))
	}
}

// RecordProfileOperation records a profile operation.
func RecordProfileOperation(operation string, err error) {
	profileOperationsTotal.WithLabelValues(operation, status(err)).Inc()
}

// RecordDirectoryListing counts one filesystem listing.
func RecordDirectoryListing() {
	directoryListingsTotal.Inc()
}

// SetTreeNodes sets the number of materialized tree nodes.
func SetTreeNodes(count int) {
	treeNodes.Set(float64(count))
}

// SetSSEConnectionsActive sets the number of active SSE connections.
func SetSSEConnectionsActive(count int) {
	sseConnectionsActive.Set(float64(count))
}

// RecordEvent records an event publication.
func RecordEvent(eventType string) {
	eventsPublishedTotal.WithLabelValues(eventType).Inc()
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// Middleware returns HTTP middleware that records request metrics.
// Requests are labelled by the matched route pattern, not the raw path.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		pattern := r.Pattern
		if pattern == "" {
			pattern = "unmatched"
		}
		RecordHTTPRequest(r.Method, pattern, rw.statusCode, time.Since(start))
	})
}
