package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal tracks proxied operation invocations
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "memgate_requests_total",
			Help: "Total number of proxied operation invocations",
		},
		[]string{"operation"},
	)

	// ErrorsTotal tracks failed operations by error kind
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "memgate_errors_total",
			Help: "Total number of failed operations",
		},
		[]string{"operation", "kind"},
	)

	// RetriesTotal tracks backend retries per operation
	RetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "memgate_retries_total",
			Help: "Total number of backend retries",
		},
		[]string{"operation"},
	)

	// RateLimitRejections tracks local budget rejections
	RateLimitRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "memgate_rate_limit_rejections_total",
			Help: "Total number of requests rejected by the local rate limiter",
		},
		[]string{"operation"},
	)

	// RequestDuration tracks end-to-end operation latency
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "memgate_request_duration_seconds",
			Help:    "Proxied operation latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
)
