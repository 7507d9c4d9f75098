package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce          sync.Once
	httpRequestsTotal     *prometheus.CounterVec
	httpLatencySeconds    *prometheus.HistogramVec
	httpErrorsTotal       *prometheus.CounterVec
	signupsTotal          *prometheus.CounterVec
	unregistrationsTotal  *prometheus.CounterVec
	participantsGauge     *prometheus.GaugeVec
	rosterEventsPublished *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		signupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "activity_signups_total",
			Help: "Signup attempts by result.",
		}, []string{"result"})

		unregistrationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "activity_unregistrations_total",
			Help: "Unregistration attempts by result.",
		}, []string{"result"})

		participantsGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "activity_participants",
			Help: "Current roster size per activity.",
		}, []string{"activity"})

		rosterEventsPublished = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "activity_roster_events_total",
			Help: "Roster events handed to brokers, by transport and outcome.",
		}, []string{"transport", "outcome"})

		prometheus.MustRegister(
			httpRequestsTotal,
			httpLatencySeconds,
			httpErrorsTotal,
			signupsTotal,
			unregistrationsTotal,
			participantsGauge,
			rosterEventsPublished,
		)
	})
}

// HTTPRequests exposes the request counter.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the request latency histogram.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the error response counter.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// Signups exposes the signup counter.
func Signups() *prometheus.CounterVec {
	RegisterMetrics()
	return signupsTotal
}

// Unregistrations exposes the unregistration counter.
func Unregistrations() *prometheus.CounterVec {
	RegisterMetrics()
	return unregistrationsTotal
}

// Participants exposes the per-activity roster size gauge.
func Participants() *prometheus.GaugeVec {
	RegisterMetrics()
	return participantsGauge
}

// RosterEvents exposes the broker publish counter.
func RosterEvents() *prometheus.CounterVec {
	RegisterMetrics()
	return rosterEventsPublished
}
