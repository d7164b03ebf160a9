// Package monitor drives trend scans and weekly digests.
//
// A Monitor owns the scan watermark, a repeating scan timer and the weekly
// digest batch. Each scan scores new content items once, matches them against
// instant subscribers, gates repeats through the dedup guard and records every
// delivery attempt. Scans never overlap: timer ticks that arrive during a scan
// are skipped and manual triggers get ErrScanInProgress.
package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/lueurxax/trend-notifier/internal/core/ports"
	"github.com/lueurxax/trend-notifier/internal/process/dedup"
)

// Defaults applied to zero Options fields.
const (
	DefaultInterval        = 5 * time.Minute
	DefaultNotifierTimeout = 10 * time.Second
	DefaultWorkers         = 8
	DefaultDigestWindow    = 7 * 24 * time.Hour
)

const (
	logFieldSubscriber = "subscriber_id"
	logFieldItem       = "item_id"
	logFieldMode       = "mode"
	logFieldCount      = "count"
	logFieldWatermark  = "watermark"
)

const workerName = "trend-monitor"

// ScanLocker serializes scans across instances. unlock is nil when the lock
// was not acquired.
type ScanLocker interface {
	TryLockScan(ctx context.Context) (unlock func(context.Context) error, acquired bool, err error)
}

// DeliveryPruner removes delivery records older than a retention horizon.
type DeliveryPruner interface {
	PruneDeliveryRecords(ctx context.Context, retention time.Duration) (int64, error)
}

// Deps are the stores and capabilities a Monitor consumes.
type Deps struct {
	Content     ports.ContentStore
	Subscribers ports.SubscriberStore
	Deliveries  ports.DeliveryStore
	Watermarks  ports.WatermarkStore
	Notifier    ports.Notifier

	// Clock defaults to ports.SystemClock.
	Clock ports.Clock

	// Locker is optional; without it scans are serialized in-process only.
	Locker ScanLocker

	// Pruner is optional; without it delivery retention is disabled.
	Pruner DeliveryPruner
}

// Options tune scheduling and dispatch.
type Options struct {
	Interval        time.Duration
	NotifierTimeout time.Duration
	DedupWindow     time.Duration
	Workers         int
	DigestWindow    time.Duration

	// Retention and RetentionInterval enable pruning of old delivery records
	// when both are positive and a Pruner is set.
	Retention         time.Duration
	RetentionInterval time.Duration

	// WatermarkStart seeds the watermark when none is persisted. Zero means
	// the first scan starts from the current time.
	WatermarkStart time.Time
}

func (o Options) withDefaults() Options {
	if o.Interval <= 0 {
		o.Interval = DefaultInterval
	}

	if o.NotifierTimeout <= 0 {
		o.NotifierTimeout = DefaultNotifierTimeout
	}

	if o.Workers <= 0 {
		o.Workers = DefaultWorkers
	}

	if o.DigestWindow <= 0 {
		o.DigestWindow = DefaultDigestWindow
	}

	return o
}

// Status is a snapshot of the monitor state.
type Status struct {
	Running         bool      `json:"running"`
	LastScannedAt   time.Time `json:"lastScannedAt"`
	IntervalSeconds int64     `json:"intervalSeconds"`
}

// Monitor schedules scans and runs weekly digests.
type Monitor struct {
	deps   Deps
	opts   Options
	guard  *dedup.Guard
	logger *zerolog.Logger

	mu            sync.Mutex
	running       bool
	generation    uint64
	cancel        context.CancelFunc
	lastScannedAt time.Time

	scanMu   sync.Mutex
	digestMu sync.Mutex
}

// New creates a stopped monitor.
func New(deps Deps, opts Options, logger *zerolog.Logger) *Monitor {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	if deps.Clock == nil {
		deps.Clock = ports.SystemClock{}
	}

	opts = opts.withDefaults()

	return &Monitor{
		deps:   deps,
		opts:   opts,
		guard:  dedup.NewGuard(deps.Deliveries, opts.DedupWindow, logger),
		logger: logger,
	}
}

// Status reports whether the timer is armed, the last watermark and the
// scan interval.
func (m *Monitor) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	return Status{
		Running:         m.running,
		LastScannedAt:   m.lastScannedAt,
		IntervalSeconds: int64(m.opts.Interval / time.Second),
	}
}

func (m *Monitor) setLastScannedAt(at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastScannedAt = at
}
