package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"method", "path", "status"},
	)

	CampaignOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campaign_operations_total",
			Help: "Total campaign ledger operations by kind and outcome",
		},
		[]string{"operation", "outcome"},
	)

	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_published_total",
			Help: "Total outbox events published by topic",
		},
		[]string{"topic"},
	)

	OutboxPending = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "outbox_pending_messages",
			Help: "Outbox messages awaiting publish at last relay pass",
		},
	)
)

func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

func RecordCampaignOperation(operation, outcome string) {
	CampaignOperations.WithLabelValues(operation, outcome).Inc()
}

func RecordEventPublished(topic string) {
	EventsPublished.WithLabelValues(topic).Inc()
}

func SetOutboxPending(count int) {
	OutboxPending.Set(float64(count))
}
