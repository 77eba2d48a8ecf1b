package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RegistrationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "registrations_total",
		Help: "Total number of users registered",
	})

	LoginsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "logins_total",
		Help: "Total number of successful logins",
	})

	AuthFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_failures_total",
		Help: "Total number of rejected authentications",
	}, []string{"reason"})

	OrdersCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Total number of orders created",
	})

	OrderStatusUpdatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "order_status_updates_total",
		Help: "Total number of order status updates",
	}, []string{"status"})

	RateLimitRejectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rate_limit_rejections_total",
		Help: "Total number of requests rejected by the rate limiter",
	}, []string{"endpoint"})

	RetryAttemptsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "retry_attempts_total",
		Help: "Total number of operation replays by the retry wrapper",
	})

	RevokedTokensPrunedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "revoked_tokens_pruned_total",
		Help: "Total number of expired entries removed from the revocation list",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
