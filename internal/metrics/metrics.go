// Package metrics exposes Prometheus collectors for the poll loop.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Cycle results.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

var (
	cyclesTotal             *prometheus.CounterVec
	notificationsTotal      *prometheus.CounterVec
	fetchDurationSeconds    prometheus.Histogram
	profileCounter          *prometheus.GaugeVec
	lastSuccessTimestampSec prometheus.Gauge
	httpRequestsTotal       *prometheus.CounterVec
	httpRequestDuration     *prometheus.HistogramVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		cyclesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "instascrape_cycles_total",
				Help: "Total number of poll cycles, labeled by result and failing stage.",
			},
			[]string{"result", "stage"},
		)

		notificationsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "instascrape_notifications_total",
				Help: "Total number of webhook notifications, labeled by kind and result.",
			},
			[]string{"kind", "result"},
		)

		fetchDurationSeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "instascrape_fetch_duration_seconds",
				Help:    "Histogram of profile page fetch latencies.",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
		)

		profileCounter = promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "instascrape_profile_count",
				Help: "Last observed profile counters, labeled by user and counter.",
			},
			[]string{"user", "counter"},
		)

		lastSuccessTimestampSec = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "instascrape_last_success_timestamp_seconds",
				Help: "Unix time of the last successful cycle.",
			},
		)

		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "instascrape_http_requests_total",
				Help: "Total number of HTTP requests served, labeled by method, route and code.",
			},
			[]string{"method", "route", "code"},
		)

		httpRequestDuration = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "instascrape_http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
			[]string{"method", "route"},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveCycle increments the cycle counter. stage is empty on success.
func ObserveCycle(result, stage string) {
	cyclesTotal.WithLabelValues(result, stage).Inc()
}

// ObserveFetch records how long a fetch took.
func ObserveFetch(duration time.Duration) {
	fetchDurationSeconds.Observe(duration.Seconds())
}

// ObserveNotification counts a webhook delivery attempt.
func ObserveNotification(kind, result string) {
	notificationsTotal.WithLabelValues(kind, result).Inc()
}

// SetProfile records the latest counters for user.
func SetProfile(user string, followers, following, posts uint64, at time.Time) {
	profileCounter.WithLabelValues(user, "followers").Set(float64(followers))
	profileCounter.WithLabelValues(user, "following").Set(float64(following))
	profileCounter.WithLabelValues(user, "posts").Set(float64(posts))
	lastSuccessTimestampSec.Set(float64(at.Unix()))
}

// ObserveHTTPRequest records one served request.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
