package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ProviderRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dost_provider_requests_total",
			Help: "Generative provider calls by outcome",
		},
		[]string{"provider", "outcome"},
	)

	ProviderLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dost_provider_latency_seconds",
			Help:    "Generative provider call latency in seconds",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		},
		[]string{"provider"},
	)

	FallbackReplies = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dost_fallback_replies_total",
			Help: "Replies served by the canned fallback responder",
		},
	)

	TriageResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dost_triage_results_total",
			Help: "Triaged messages by detected emotion and stress level",
		},
		[]string{"emotion", "stress_level"},
	)

	CrisisDetections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dost_crisis_detections_total",
			Help: "Messages that matched a crisis pattern",
		},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dost_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "dost_http_request_duration_seconds",
			Help: "HTTP request duration in seconds",
		},
		[]string{"method"},
	)
)
