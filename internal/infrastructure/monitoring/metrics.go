package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CheckoutAttemptsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pos_checkout_attempts_total",
			Help: "Total number of checkout attempts",
		},
	)

	CheckoutCommittedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pos_checkout_committed_total",
			Help: "Total number of checkouts committed synchronously",
		},
	)

	CheckoutDeferredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pos_checkout_deferred_total",
			Help: "Total number of checkouts deferred to the offline queue",
		},
	)

	CheckoutFailureTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pos_checkout_failure_total",
			Help: "Total number of failed checkouts",
		},
		[]string{"reason"},
	)
)

var (
	SyncPassesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pos_sync_passes_total",
			Help: "Total number of offline queue drain passes",
		},
		[]string{"result"},
	)

	SyncTransactionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pos_sync_transactions_total",
			Help: "Total number of pending transactions replayed successfully",
		},
	)

	SyncSkippedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pos_sync_skipped_total",
			Help: "Total number of corrupt queue entries passed over",
		},
	)

	OfflineQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pos_offline_queue_depth",
			Help: "Number of pending transactions waiting for sync",
		},
	)
)

var (
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pos_db_query_duration_seconds",
			Help:    "Duration of ledger database queries in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"query_type", "table"},
	)

	DBConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pos_db_connections_active",
			Help: "Number of active ledger database connections",
		},
	)

	DBConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pos_db_connections_idle",
			Help: "Number of idle ledger database connections",
		},
	)

	StockCacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pos_stock_cache_hits_total",
			Help: "Total number of product snapshot cache hits",
		},
	)

	StockCacheMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pos_stock_cache_misses_total",
			Help: "Total number of product snapshot cache misses",
		},
	)
)

func TimeDBQuery(queryType, table string) func() {
	start := time.Now()
	return func() {
		duration := time.Since(start).Seconds()
		DBQueryDuration.WithLabelValues(queryType, table).Observe(duration)
	}
}

func RecordCheckoutAttempt() {
	CheckoutAttemptsTotal.Inc()
}

func RecordCheckoutCommitted() {
	CheckoutCommittedTotal.Inc()
}

func RecordCheckoutDeferred() {
	CheckoutDeferredTotal.Inc()
}

func RecordCheckoutFailure(reason string) {
	CheckoutFailureTotal.WithLabelValues(reason).Inc()
}

func RecordSyncPass(result string, synced, skipped int) {
	SyncPassesTotal.WithLabelValues(result).Inc()
	SyncTransactionsTotal.Add(float64(synced))
	SyncSkippedTotal.Add(float64(skipped))
}

func UpdateQueueDepth(depth int) {
	OfflineQueueDepth.Set(float64(depth))
}
