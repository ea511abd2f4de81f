package obs

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTP-level metrics
var (
	httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "http_in_flight_requests",
		Help: "In-flight HTTP requests.",
	})

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

// Domain-level metrics
var (
	loginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_logins_total",
			Help: "Login attempts by kind and result.",
		},
		[]string{"kind", "result"},
	)

	federatedCompletionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_federated_completions_total",
			Help: "Federated reconciliations by outcome.",
		},
		[]string{"outcome"},
	)

	decisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_request_decisions_total",
			Help: "Request decisions by outcome.",
		},
		[]string{"outcome"},
	)
)

// Init registers all metrics with the default registry
func Init() {
	prometheus.MustRegister(
		httpInFlight, httpRequestsTotal, httpRequestDuration,
		loginsTotal, federatedCompletionsTotal, decisionsTotal,
	)
}

// Handler returns the Prometheus scrape handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// Instrument is an echo middleware measuring RPS, latency and in-flight
// requests. Paths are taken from the matched route so label cardinality
// stays bounded.
func Instrument() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			httpInFlight.Inc()
			start := time.Now()

			err := next(c)

			duration := time.Since(start).Seconds()
			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				}
			}

			path := c.Path()
			if path == "" {
				path = c.Request().URL.Path
			}
			labels := []string{c.Request().Method, path, strconv.Itoa(status)}

			httpRequestDuration.WithLabelValues(labels...).Observe(duration)
			httpRequestsTotal.WithLabelValues(labels...).Inc()
			httpInFlight.Dec()

			return err
		}
	}
}

// RecordLogin counts a login attempt. kind is "citizen" or "staff".
func RecordLogin(kind string, ok bool) {
	result := "failure"
	if ok {
		result = "success"
	}
	loginsTotal.WithLabelValues(kind, result).Inc()
}

// RecordFederatedCompletion counts a reconciliation outcome, for example
// "staff_login", "citizen_login", "signup_required" or "rejected".
func RecordFederatedCompletion(outcome string) {
	federatedCompletionsTotal.WithLabelValues(outcome).Inc()
}

// RecordDecision counts a request decision outcome
func RecordDecision(outcome string) {
	decisionsTotal.WithLabelValues(outcome).Inc()
}
