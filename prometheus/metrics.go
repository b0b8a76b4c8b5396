package prometheus

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Counter metrics
var (
	// Login counter
	LoginCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "portal_login_total",
			Help: "Total number of login attempts",
		},
	)

	// HTTP request counter by endpoint and status
	HTTPRequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_http_requests_total",
			Help: "Total number of HTTP requests by endpoint and status",
		},
		[]string{"endpoint", "method", "status"},
	)

	// Authentication error counter
	AuthErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_auth_errors_total",
			Help: "Total number of authentication errors",
		},
		[]string{"type"}, // "missing_token", "invalid_token", etc.
	)

	// Access denial counter (role gate and active-client resolution)
	AccessDeniedCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_access_denied_total",
			Help: "Total number of authorization denials",
		},
		[]string{"reason"}, // "insufficient_role", "client_not_associated", etc.
	)

	// Integrity error counter, kept separate from AccessDeniedCounter since
	// these indicate provisioning defects rather than user error
	IntegrityErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_integrity_errors_total",
			Help: "Total number of data-integrity violations detected during authorization",
		},
		[]string{"kind"},
	)

	// Resource operation counter
	ResourceOperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_resource_operations_total",
			Help: "Total number of tenant-scoped resource operations",
		},
		[]string{"resource", "operation"},
	)

	// Association sync counter
	AssociationSyncCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "portal_association_syncs_total",
			Help: "Total number of user-client association reconciliations",
		},
	)
)

// Histogram metrics
var (
	// Request duration
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "portal_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	)

	// Database operation duration
	DBOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "portal_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"}, // "query", "insert", "update", "delete"
	)
)

// Gauge metrics
var (
	// Active tokens
	ActiveTokensGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "portal_active_tokens",
			Help: "Number of currently active session tokens",
		},
	)

	// System info
	InfoGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "portal_info",
			Help: "Information about the portal service",
		},
		[]string{"version"},
	)
)

func init() {
	prometheus.MustRegister(LoginCounter)
	prometheus.MustRegister(HTTPRequestCounter)
	prometheus.MustRegister(AuthErrorCounter)
	prometheus.MustRegister(AccessDeniedCounter)
	prometheus.MustRegister(IntegrityErrorCounter)
	prometheus.MustRegister(ResourceOperationCounter)
	prometheus.MustRegister(AssociationSyncCounter)

	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(DBOperationDuration)

	prometheus.MustRegister(ActiveTokensGauge)
	prometheus.MustRegister(InfoGauge)

	InfoGauge.With(prometheus.Labels{"version": "1.0.0"}).Set(1)
}

// GetPrometheusHandler returns an HTTP handler for the Prometheus metrics
func GetPrometheusHandler() http.Handler {
	return promhttp.Handler()
}

// TrackDBOperation measures database operation durations
func TrackDBOperation(operation string) func(time.Time) {
	startTime := time.Now()
	return func(endTime time.Time) {
		duration := time.Since(startTime).Seconds()
		DBOperationDuration.With(prometheus.Labels{
			"operation": operation,
		}).Observe(duration)
	}
}

// MetricsMiddleware creates a middleware function that captures metrics for each request
func MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			duration := time.Since(start).Seconds()
			status := strconv.Itoa(c.Response().Status)
			endpoint := c.Path()
			method := c.Request().Method

			RequestDuration.With(prometheus.Labels{
				"endpoint": endpoint,
				"method":   method,
				"status":   status,
			}).Observe(duration)

			HTTPRequestCounter.With(prometheus.Labels{
				"endpoint": endpoint,
				"method":   method,
				"status":   status,
			}).Inc()

			return err
		}
	}
}

// IncreaseActiveTokens increments the active tokens gauge
func IncreaseActiveTokens() {
	ActiveTokensGauge.Inc()
}

// RecordAuthError records an authentication error by type
func RecordAuthError(errorType string) {
	AuthErrorCounter.With(prometheus.Labels{"type": errorType}).Inc()
}

// RecordAccessDenied records an authorization denial by reason
func RecordAccessDenied(reason string) {
	AccessDeniedCounter.With(prometheus.Labels{"reason": reason}).Inc()
}

// RecordIntegrityError records a data-integrity violation by kind
func RecordIntegrityError(kind string) {
	IntegrityErrorCounter.With(prometheus.Labels{"kind": kind}).Inc()
}

// RecordResourceOperation records a tenant-scoped resource operation
func RecordResourceOperation(resource, operation string) {
	ResourceOperationCounter.With(prometheus.Labels{
		"resource":  resource,
		"operation": operation,
	}).Inc()
}
