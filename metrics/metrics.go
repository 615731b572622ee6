// metrics/metrics.go
package metrics

import (
	"net/http"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// reqDuration is a histogram of HTTP request durations in seconds, labeled
// by path, method, and status code.
var reqDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name: "http_request_duration_seconds",
		Help: "Duration of HTTP requests.",
		// buckets in seconds
		Buckets: []float64{0.01, 0.1, 0.3, 1.2, 5},
	},
	[]string{"path", "method", "status"},
)

// Results recorded by ObserveDBHandleInit.
const (
	DBInitOK           = "ok"
	DBInitConfigError  = "config_error"
	DBInitConnectError = "connect_error"
)

// dbHandleInit counts attempts to build the shared database handle, labeled
// by outcome. A healthy process records exactly one "ok".
var dbHandleInit = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "db_handle_init_total",
		Help: "Attempts to build the shared database handle.",
	},
	[]string{"result"},
)

// ObserveDBHandleInit records one handle construction attempt.
func ObserveDBHandleInit(result string) {
	dbHandleInit.WithLabelValues(result).Inc()
}

// RegisterDefault registers the Go runtime and process collectors, the HTTP
// request duration histogram, and the database handle counter. Call it once
// at startup; repeated calls are harmless.
//
// Registration failures other than "already registered" are fatal.
func RegisterDefault(logger *zap.Logger) {
	// Go runtime metrics
	mustRegister(logger, "Go collector", collectors.NewGoCollector())

	// Process metrics
	mustRegister(logger, "process collector", collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// HTTP request histogram
	mustRegister(logger, "HTTP request histogram", reqDuration)

	// Database handle construction
	mustRegister(logger, "DB handle counter", dbHandleInit)
}

// mustRegister registers c, tolerating AlreadyRegisteredError. Any other
// failure is fatal.
func mustRegister(logger *zap.Logger, name string, c prometheus.Collector) {
	if err := prometheus.Register(c); err != nil {
		if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return
		}
		if logger != nil {
			logger.Fatal("failed to register "+name, zap.Error(err))
		} else {
			panic("metrics: failed to register " + name + ": " + err.Error())
		}
	}
}

// maxPathLabelLength is the maximum length for the path label to prevent
// unbounded cardinality and memory issues in Prometheus.
const maxPathLabelLength = 256

// HTTPMetrics is a middleware that records request duration into the
// http_request_duration_seconds histogram.
//
// It uses the chi route pattern (e.g., "/users/{id}") instead of the actual
// request path (e.g., "/users/123") to prevent label cardinality explosion.
// Paths longer than 256 characters are truncated with "..." to prevent
// unbounded memory growth in the metrics registry.
func HTTPMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		// Default to HTTP/1.x if ProtoMajor is invalid (e.g., malformed request).
		protoMajor := r.ProtoMajor
		if protoMajor < 1 {
			protoMajor = 1
		}
		ww := middleware.NewWrapResponseWriter(w, protoMajor)

		next.ServeHTTP(ww, r)

		duration := time.Since(start).Seconds()
		statusCode := ww.Status()
		// Status 0 means WriteHeader was never called, which net/http treats as 200.
		if statusCode == 0 {
			statusCode = http.StatusOK
		}
		// Clamp to the valid range to keep label cardinality bounded.
		if statusCode < 100 || statusCode > 599 {
			statusCode = http.StatusInternalServerError
		}

		// Use route pattern to avoid cardinality explosion from path parameters.
		// Falls back to raw path if route context is unavailable (non-chi routers).
		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}

		// Truncate without splitting multi-byte characters.
		if len(path) > maxPathLabelLength {
			// Ensure we have room for at least 1 char + "..."
			truncateLen := maxPathLabelLength - 3
			if truncateLen < 1 {
				truncateLen = 1
			}
			path = truncateUTF8(path, truncateLen) + "..."
		}

		reqDuration.WithLabelValues(
			path,
			r.Method,
			strconv.Itoa(statusCode),
		).Observe(duration)
	})
}

// Handler returns an http.Handler that exposes the Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// truncateUTF8 truncates s to at most maxBytes bytes without splitting
// multi-byte UTF-8 characters. If s is already <= maxBytes, it is returned
// unchanged. Otherwise, it truncates at the last valid rune boundary.
// If maxBytes <= 0, returns an empty string.
func truncateUTF8(s string, maxBytes int) string {
	if maxBytes <= 0 {
		return ""
	}
	if len(s) <= maxBytes {
		return s
	}
	// At this point len(s) > maxBytes, so s[maxBytes] is a valid index.
	// Work backwards from maxBytes to find a valid rune boundary.
	for maxBytes > 0 && !utf8.RuneStart(s[maxBytes]) {
		maxBytes--
	}
	return s[:maxBytes]
}
