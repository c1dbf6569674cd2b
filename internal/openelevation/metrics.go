package openelevation

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "openelevation_requests_total",
		Help: "The total number of chunk requests sent to the lookup endpoint",
	})
	requestFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "openelevation_request_failures_total",
		Help: "The total number of chunk requests that failed",
	})
	pointsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "openelevation_points_total",
		Help: "The total number of points returned by the lookup endpoint",
	})
	requestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "openelevation_request_duration_seconds",
		Help:    "The duration of chunk requests to the lookup endpoint",
		Buckets: prometheus.DefBuckets,
	})
)
