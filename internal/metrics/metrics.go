package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roomchat_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "roomchat_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Timeline metrics
	MessagesAppended = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roomchat_messages_appended_total",
			Help: "Total messages appended to a room timeline",
		},
		[]string{"from"}, // "user" or "assistant"
	)

	PaginationLoads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roomchat_pagination_loads_total",
			Help: "Backward pagination requests",
		},
		[]string{"result"}, // "grown" or "exhausted"
	)

	// Reply queue metrics
	RepliesEmitted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "roomchat_replies_emitted_total",
			Help: "Total assistant replies produced by the reply queue",
		},
	)

	RepliesDiscarded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "roomchat_replies_discarded_total",
			Help: "Replies dropped because their room was closed",
		},
	)

	ReplyQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "roomchat_reply_queue_depth",
			Help: "Pending reply triggers for the open room",
		},
	)

	// Storage metrics
	StorageCorrupt = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roomchat_storage_corrupt_total",
			Help: "Malformed records reset to empty",
		},
		[]string{"key"},
	)

	Rooms = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "roomchat_rooms_total",
			Help: "Chatrooms currently registered",
		},
	)
)
