// Package metrics holds the Prometheus collectors exposed on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is private to the service so tests and the default Go registry
// never collide.
var Registry = prometheus.NewRegistry()

var (
	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests by method, route template and status code.",
	}, []string{"method", "route", "status"})

	HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency by method and route template.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	RegistrationTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "registration_transitions_total",
		Help: "Applied registration status changes.",
	}, []string{"from", "to"})

	CapacityRejections = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "registration_capacity_rejections_total",
		Help: "Approvals refused because the tournament was full.",
	})

	TournamentAdvances = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tournament_status_advances_total",
		Help: "Tournaments moved forward by the scheduler.",
	}, []string{"to"})

	IdentitySyncs = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "identity_sync_runs_total",
		Help: "Identity sync runs by outcome.",
	}, []string{"outcome"})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		HTTPRequests,
		HTTPDuration,
		RegistrationTransitions,
		CapacityRejections,
		TournamentAdvances,
		IdentitySyncs,
	)
}

// Handler serves the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
