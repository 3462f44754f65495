// Package metrics provides the centralized Prometheus metrics registry for the predictor.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "match_predictor"

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	FeedRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "feed_requests_total",
		Help:      "Total number of live feed requests by result",
	}, []string{"result"})
	FeedCacheLookupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "feed_cache_lookups_total",
		Help:      "Feed cache lookups by hit or miss",
	}, []string{"result"})
	CircuitBreakerTripsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "circuit_breaker_trips_total",
		Help:      "Total number of feed client circuit breaker trips",
	})
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "API requests by route and status code",
	}, []string{"route", "status"})
	MatchesArchivedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "matches_archived_total",
		Help:      "Total number of finished matches archived",
	})
)

// Gauge metrics
var (
	WebsocketClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "websocket_clients",
		Help:      "Number of connected websocket clients",
	})
	LastRefreshTimestamp = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_refresh_timestamp_seconds",
		Help:      "Unix time of the last successful prediction refresh",
	})
)

// Histogram metrics
var (
	FeedFetchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "feed_fetch_duration_seconds",
		Help:      "Duration of live feed requests in seconds",
		Buckets:   prometheus.DefBuckets,
	})
	PredictionRunDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "prediction_run_duration_seconds",
		Help:      "Duration of a full prediction request in seconds",
		Buckets:   prometheus.DefBuckets,
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(FeedRequestsTotal)
		registry.MustRegister(FeedCacheLookupsTotal)
		registry.MustRegister(CircuitBreakerTripsTotal)
		registry.MustRegister(HTTPRequestsTotal)
		registry.MustRegister(MatchesArchivedTotal)

		registry.MustRegister(WebsocketClients)
		registry.MustRegister(LastRefreshTimestamp)

		registry.MustRegister(FeedFetchDuration)
		registry.MustRegister(PredictionRunDuration)

		// prediction metrics
		registry.MustRegister(PredictionsTotal)
		registry.MustRegister(PredictionProbability)
		registry.MustRegister(MarketOverround)
		registry.MustRegister(AlternativeOutcomesTotal)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	return InitRegistry()
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordFeedRequest records a feed request result and its duration.
func RecordFeedRequest(result string, durationSeconds float64) {
	FeedRequestsTotal.WithLabelValues(result).Inc()
	FeedFetchDuration.Observe(durationSeconds)
}

// RecordCacheLookup records a feed cache hit or miss.
func RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	FeedCacheLookupsTotal.WithLabelValues(result).Inc()
}

// RecordCircuitBreakerTrip records a circuit breaker trip.
func RecordCircuitBreakerTrip() {
	CircuitBreakerTripsTotal.Inc()
}

// RecordHTTPRequest records an API request.
func RecordHTTPRequest(route, status string) {
	HTTPRequestsTotal.WithLabelValues(route, status).Inc()
}

// RecordMatchesArchived adds archived matches to the running total.
func RecordMatchesArchived(count int) {
	MatchesArchivedTotal.Add(float64(count))
}

// UpdateWebsocketClients sets the number of connected websocket clients.
func UpdateWebsocketClients(count int) {
	WebsocketClients.Set(float64(count))
}

// RecordRefresh marks a successful refresh at the given unix time.
func RecordRefresh(unixSeconds float64) {
	LastRefreshTimestamp.Set(unixSeconds)
}

// RecordPredictionRun records the duration of a prediction request.
func RecordPredictionRun(durationSeconds float64) {
	PredictionRunDuration.Observe(durationSeconds)
}
