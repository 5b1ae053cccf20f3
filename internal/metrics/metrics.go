package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "enque_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "enque_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "path"},
	)

	// Realtime metrics
	RealtimeSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "enque_realtime_sessions",
			Help: "Currently connected realtime sessions",
		},
	)

	RealtimeEventsDelivered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "enque_realtime_events_delivered_total",
			Help: "Realtime events delivered to sessions",
		},
		[]string{"type"},
	)

	RealtimeEventsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "enque_realtime_events_dropped_total",
			Help: "Realtime deliveries that failed and evicted the session",
		},
	)

	// Rate limit metrics
	RateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "enque_rate_limit_hits_total",
			Help: "Requests rejected by the rate limiter",
		},
		[]string{"policy"},
	)

	RateLimitStoreFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "enque_rate_limit_store_failures_total",
			Help: "Rate limit store errors that caused a fail-open admit",
		},
	)

	// Business metrics
	TicketsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "enque_tickets_created_total",
			Help: "Total tickets created",
		},
	)

	CommentsPosted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "enque_comments_posted_total",
			Help: "Total comments posted",
		},
	)
)
