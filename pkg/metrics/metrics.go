package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthAttempts records authentication attempts by result (success|failure).
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "memberhub_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"result"},
	)

	// IntentionDecisions counts membership intention decisions (approved|rejected).
	IntentionDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "memberhub_intention_decisions_total",
			Help: "Total number of membership intention decisions",
		},
		[]string{"decision"},
	)

	// RateLimitRejections counts requests refused by the rate limiter.
	RateLimitRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "memberhub_rate_limit_rejections_total",
			Help: "Total number of requests rejected by rate limiting",
		},
		[]string{"path"},
	)

	// NotificationFailures counts decision notifications that could not be delivered.
	NotificationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "memberhub_notification_failures_total",
			Help: "Total number of failed decision notifications",
		},
		[]string{"channel"},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "memberhub_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
