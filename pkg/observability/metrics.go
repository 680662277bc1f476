// Package observability provides Prometheus metrics and HTTP middleware
// for monitoring outbound provider calls and the gateway surfaces.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// CallBuckets covers third-party API latencies from 10ms to 30s.
var CallBuckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 30}

// Outcome label values.
const (
	OutcomeCompleted = "completed"
	OutcomeIsolated  = "isolated"
	OutcomeOK        = "ok"
	OutcomeError     = "error"
)

var (
	// RequestsTotal counts gateway HTTP requests by method, status class, and route.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "apiclient_requests_total",
			Help: "Total gateway requests",
		},
		[]string{"method", "status", "route"},
	)

	// RequestDuration records gateway request duration in seconds.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "apiclient_request_duration_seconds",
			Help:    "Gateway request duration",
			Buckets: CallBuckets,
		},
		[]string{"method", "route"},
	)

	// RequestsInFlight tracks gateway requests currently being served.
	RequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "apiclient_requests_in_flight",
			Help: "Gateway requests in flight",
		},
	)

	// RetrievalsTotal counts outbound exchanges by scheme and outcome
	// ("completed" or "isolated").
	RetrievalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "apiclient_retrievals_total",
			Help: "Outbound HTTP exchanges",
		},
		[]string{"scheme", "outcome"},
	)

	// RetrievalDuration records outbound exchange latency by scheme.
	RetrievalDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "apiclient_retrieval_duration_seconds",
			Help:    "Outbound HTTP exchange latency",
			Buckets: CallBuckets,
		},
		[]string{"scheme"},
	)

	// DispatchesTotal counts dispatched calls by call name and outcome.
	DispatchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "apiclient_dispatches_total",
			Help: "Dispatched API calls",
		},
		[]string{"call", "outcome"},
	)

	// DispatchDuration records the time from dispatch to callback.
	DispatchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "apiclient_dispatch_duration_seconds",
			Help:    "Dispatch to callback latency",
			Buckets: CallBuckets,
		},
		[]string{"call"},
	)

	// DispatchesInFlight tracks asynchronous dispatches that have not returned.
	DispatchesInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "apiclient_dispatches_in_flight",
			Help: "Asynchronous dispatches in flight",
		},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		RequestsInFlight,
		RetrievalsTotal,
		RetrievalDuration,
		DispatchesTotal,
		DispatchDuration,
		DispatchesInFlight,
	)
}

// Handler serves the default registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.Handler()
}
