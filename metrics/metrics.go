package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Prometheus metrics for webhook intake and outbound provider calls
var (
	WebhookDeliveriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_deliveries_total",
			Help: "Total number of webhook POST deliveries by result",
		},
		[]string{"result"}, // accepted, bad_signature, bad_body, not_page
	)

	WebhookEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_events_total",
			Help: "Total number of messaging events by classified kind",
		},
		[]string{"kind"},
	)

	ProviderRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "provider_requests_total",
			Help: "Total number of outbound provider calls by outcome",
		},
		[]string{"provider", "outcome"},
	)

	ProviderRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "provider_request_duration_seconds",
			Help:    "Duration of outbound provider calls",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider"},
	)

	RepliesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "replies_total",
			Help: "Total number of Send API calls by status",
		},
		[]string{"status"}, // sent, failed
	)

	DuplicateMessagesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "duplicate_messages_total",
			Help: "Total number of redelivered messages dropped by deduplication",
		},
	)
)

var registerOnce sync.Once

// Register registers all Prometheus metrics with the default registry.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			WebhookDeliveriesTotal,
			WebhookEventsTotal,
			ProviderRequestsTotal,
			ProviderRequestDuration,
			RepliesTotal,
			DuplicateMessagesTotal,
		)
	})
}
