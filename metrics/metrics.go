package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const prefix = "civicconnect"

var (
	// HTTP request metrics
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
	HttpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// Authentication metrics
	AuthAttemptsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_auth_attempts_total",
			Help: "Login, register and refresh attempts by outcome",
		},
		[]string{"action", "outcome"},
	)

	NotificationsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_notifications_created_total",
			Help: "Notifications created by type",
		},
		[]string{"type"},
	)

	RateLimitRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_rate_limit_rejections_total",
			Help: "Requests rejected by a rate limiter",
		},
		[]string{"limiter"},
	)

	DbOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_db_operation_duration_seconds",
			Help:    "Duration of multi-statement database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
)

func RecordRequest(method string, path string, status string, duration time.Duration) {
	HttpRequestsTotal.WithLabelValues(method, path, status).Inc()
	HttpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

func RecordAuthAttempt(action string, outcome string) {
	AuthAttemptsCounter.WithLabelValues(action, outcome).Inc()
}

func RecordNotifications(notificationType string, count int) {
	NotificationsCreated.WithLabelValues(notificationType).Add(float64(count))
}

func RecordRateLimitRejection(limiter string) {
	RateLimitRejections.WithLabelValues(limiter).Inc()
}

// TrackDBOperation returns a function that records the duration of a database operation
func TrackDBOperation(operation string) func(startTime time.Time) {
	return func(startTime time.Time) {
		DbOperationDuration.WithLabelValues(operation).Observe(time.Since(startTime).Seconds())
	}
}
