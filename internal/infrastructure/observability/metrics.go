package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Labelled by repository method and "success"/"error".
	RepositoryCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "repository_calls_total",
			Help: "Total number of repository method calls",
		},
		[]string{"method", "status"},
	)

	RepositoryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "repository_duration_seconds",
			Help:    "Duration of repository method calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	WalletEventsConsumed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wallet_events_consumed_total",
			Help: "Wallet events read from Kafka by the ledger consumer",
		},
		[]string{"status"},
	)

	AdoptionsCompleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "adoptions_completed_total",
			Help: "Total number of pets adopted through checkout",
		},
	)
)

// InitMetrics registers the collectors with the default registry, which the router serves on /metrics.
func InitMetrics() {
	prometheus.MustRegister(RepositoryCalls, RepositoryDuration, WalletEventsConsumed, AdoptionsCompleted)
}
