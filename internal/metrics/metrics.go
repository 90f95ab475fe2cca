// Package metrics holds the Prometheus collectors shared by the TMDb client,
// the outbound HTTP client and the catalog frontends.
//
// Exposed series:
//   - moviedeck_tmdb_requests_total{endpoint, status}
//   - moviedeck_tmdb_request_duration_seconds{endpoint}
//   - moviedeck_fetch_errors_total{kind}: network, bad_response, parse
//   - moviedeck_stale_responses_total{frontend}: responses dropped by last-query-wins
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RequestsTotal counts outbound TMDb requests by endpoint path and HTTP status.
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "moviedeck_tmdb_requests_total",
		Help: "Outbound TMDb requests by endpoint and status",
	}, []string{"endpoint", "status"})

	// RequestDuration tracks outbound request latency by endpoint path.
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "moviedeck_tmdb_request_duration_seconds",
		Help:    "Outbound TMDb request duration in seconds",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	}, []string{"endpoint"})

	// FetchErrors counts failed fetches by error kind.
	FetchErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "moviedeck_fetch_errors_total",
		Help: "Failed TMDb fetches by error kind",
	}, []string{"kind"})

	// StaleResponses counts responses discarded because a newer page was requested.
	StaleResponses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "moviedeck_stale_responses_total",
		Help: "Responses discarded because a newer request superseded them",
	}, []string{"frontend"})
)

// Handler returns the HTTP handler serving the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
