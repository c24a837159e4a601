// Package metrics defines the Prometheus instrumentation shared across
// the server. Metrics are registered with the default registry via promauto
// and exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Rating cache metrics
var (
	// RatingsSubmittedTotal counts rating submissions by verb ("new" or "amend").
	RatingsSubmittedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ratings_submitted_total",
			Help: "Total rating submissions by verb",
		},
		[]string{"verb"},
	)

	// RatingCacheSize tracks the number of beers with at least one live rating.
	RatingCacheSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "rating_cache_size",
			Help: "Number of beers with at least one live rating",
		},
	)

	// RatingCacheRefreshesTotal counts full resyncs of the rating cache by status.
	RatingCacheRefreshesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rating_cache_refreshes_total",
			Help: "Total rating cache resyncs from the backing store by status",
		},
		[]string{"status"},
	)
)

// Dataset metrics
var (
	// DatasetRefreshesTotal counts dataset rebuilds from the backing store by status.
	DatasetRefreshesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dataset_refreshes_total",
			Help: "Total dataset rebuilds from the backing store by status",
		},
		[]string{"status"},
	)

	// DatasetQueryDuration tracks how long a full dataset rebuild takes.
	DatasetQueryDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dataset_query_duration_seconds",
			Help:    "Duration of full dataset rebuilds in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		},
	)
)

// Broadcaster metrics
var (
	// BroadcasterConnectedClients tracks the number of connected WebSocket clients.
	BroadcasterConnectedClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "broadcaster_connected_clients",
			Help: "Number of connected WebSocket clients",
		},
	)

	// BroadcasterEventsTotal counts events sent to clients by type ("update" or "rate").
	BroadcasterEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "broadcaster_events_total",
			Help: "Total events sent to WebSocket clients by type",
		},
		[]string{"type"},
	)

	// BroadcasterSlowClientsEvicted counts clients dropped for not draining
	// their send buffer.
	BroadcasterSlowClientsEvicted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "broadcaster_slow_clients_evicted_total",
			Help: "Total slow WebSocket clients evicted",
		},
	)
)

// HTTP metrics
var (
	// HTTPErrorsTotal tracks HTTP errors by error type.
	HTTPErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_errors_total",
			Help: "Total HTTP errors by error type",
		},
		[]string{"type"},
	)

	// CSVExportsTotal counts CSV export requests by cache outcome ("hit" or "miss").
	CSVExportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "csv_exports_total",
			Help: "Total CSV export requests by cache outcome",
		},
		[]string{"cache"},
	)
)
