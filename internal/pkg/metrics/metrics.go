package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	RateLimited = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_rate_limited_total",
			Help: "Requests rejected by the rate limiter",
		},
		[]string{"route"},
	)
	RelationshipTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relationship_transitions_total",
			Help: "Relationship state machine outcomes by action",
		},
		[]string{"action", "outcome"},
	)
)

// Register registers all collectors. Call once from main.
func Register(reg prometheus.Registerer) {
	reg.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		RateLimited,
		RelationshipTransitions,
	)
}

// ObserveTransition counts one state machine outcome
func ObserveTransition(action, outcome string) {
	RelationshipTransitions.WithLabelValues(action, outcome).Inc()
}
