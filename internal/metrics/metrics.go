package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Report fetch metrics
var (
	// FetchAttemptsTotal counts upstream attempts by outcome ("success", "rate_limited", "transient", "fatal")
	FetchAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentiment_fetch_attempts_total",
			Help: "Upstream sentiment report attempts by outcome",
		},
		[]string{"outcome"},
	)

	FetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sentiment_fetch_duration_seconds",
			Help:    "Upstream sentiment report latency in seconds",
			Buckets: []float64{.25, .5, 1, 2.5, 5, 10, 20, 40, 60},
		},
	)
)

// Controller metrics
var (
	// CyclesTotal counts completed poll cycles by result ("fresh" or a failure kind)
	CyclesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentiment_cycles_total",
			Help: "Completed sentiment poll cycles by result",
		},
		[]string{"result"},
	)

	BackoffWaitSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sentiment_backoff_wait_seconds",
			Help:    "Backoff delay applied between attempts within a cycle",
			Buckets: []float64{1, 2, 4, 8, 16, 30},
		},
	)

	AlertsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentiment_alerts_total",
			Help: "Alerts handed to the notifier by kind and delivery status",
		},
		[]string{"kind", "status"},
	)

	// LastSuccessTimestamp is the unix time of the last committed fresh entry
	LastSuccessTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sentiment_last_success_timestamp_seconds",
			Help: "Unix timestamp of the last successful sentiment fetch",
		},
	)

	PlaceholderCommentaryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentiment_placeholder_commentary_total",
			Help: "Records whose commentary could not be located in the report",
		},
		[]string{"instrument"},
	)
)

// Snapshot mirror metrics
var (
	SnapshotWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentiment_snapshot_writes_total",
			Help: "Redis snapshot mirror writes by status",
		},
		[]string{"status"},
	)
)
