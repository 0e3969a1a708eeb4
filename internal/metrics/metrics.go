package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "useradmin"
)

var (
	// Upstream API Metrics
	UpstreamRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "upstream_requests_total",
		Help:      "Count of requests sent to the user API.",
	}, []string{"operation", "status"})

	UpstreamRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "upstream_request_duration_seconds",
		Help:      "Time taken for a user API request to complete.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})

	// Roster Metrics
	RosterMutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "roster_mutations_total",
		Help:      "Count of add, update and delete actions on the users page.",
	}, []string{"action", "result"})
)
