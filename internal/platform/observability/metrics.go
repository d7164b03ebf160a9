package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ScansTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trend_scans_total",
		Help: "The total number of monitor scans by outcome",
	}, []string{"status"})

	ScanDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "trend_scan_duration_seconds",
		Help:    "Duration in seconds of a monitor scan",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300},
	})

	ScanItems = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "trend_scan_items",
		Help:    "Number of new content items seen by a scan",
		Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100, 250, 500},
	})

	ItemScore = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "trend_item_score",
		Help:    "Distribution of heuristic item scores",
		Buckets: []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0},
	})

	ItemsCategorized = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trend_items_categorized_total",
		Help: "The total number of scored items by category",
	}, []string{"category"})

	DeliveriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trend_deliveries_total",
		Help: "The total number of delivery attempts by mode and status",
	}, []string{"mode", "status"})

	DeliveriesSuppressed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "trend_deliveries_suppressed_total",
		Help: "The total number of instant alerts suppressed by the dedup window",
	})

	DeliveryRecordErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "trend_delivery_record_errors_total",
		Help: "The total number of delivery records that could not be stored",
	})

	DedupLookupErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "trend_dedup_lookup_errors_total",
		Help: "The total number of dedup lookups that failed open",
	})

	NotifierSendDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "trend_notifier_send_duration_seconds",
		Help:    "Duration of notifier send calls",
		Buckets: prometheus.DefBuckets,
	})

	DigestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trend_digests_total",
		Help: "The total number of weekly digest deliveries by status",
	}, []string{"status"})

	WatermarkTimestamp = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "trend_watermark_timestamp_seconds",
		Help: "Unix time of the current scan watermark",
	})

	MonitorRunning = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "trend_monitor_running",
		Help: "1 when the monitor timer is armed, 0 otherwise",
	})

	DeliveryRecordsPruned = promauto.NewCounter(prometheus.CounterOpts{
		Name: "trend_delivery_records_pruned_total",
		Help: "The total number of delivery records removed by retention",
	})

	ControlRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trend_control_requests_total",
		Help: "The total number of control surface requests by route and status code",
	}, []string{"route", "status"})
)
