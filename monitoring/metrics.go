package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	ResponseTimeHistogram = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_time_seconds",
			Help:    "Histogram of response times",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	CommissionLevelsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "referral_commission_levels_total",
			Help: "Commission levels paid out, by trigger type",
		},
		[]string{"trigger_type"},
	)

	DistributionFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "referral_distribution_failures_total",
			Help: "Distribution runs that stopped on an error",
		},
	)

	WithdrawalTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "withdrawal_transitions_total",
			Help: "Withdrawal requests processed, by final status",
		},
		[]string{"status"},
	)
)
