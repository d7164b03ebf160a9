package monitor

import (
	"context"
	"errors"
	"fmt"

	"github.com/lueurxax/trend-notifier/internal/core/domain"
	apperrors "github.com/lueurxax/trend-notifier/internal/core/errors"
	"github.com/lueurxax/trend-notifier/internal/platform/observability"
	"github.com/lueurxax/trend-notifier/internal/platform/worker"
)

// Start arms the scan timer and runs one scan immediately. Starting a running
// monitor is a no-op. Without a notifier the monitor refuses to start.
// The timer stops when ctx is canceled or Stop is called.
func (m *Monitor) Start(ctx context.Context) error {
	if m.deps.Notifier == nil {
		return fmt.Errorf("start monitor: %w", apperrors.ErrNotifierMissing)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return nil
	}

	loopCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.running = true
	m.generation++

	observability.MonitorRunning.Set(1)

	cfg := worker.SingleTickerConfig{
		Name:       workerName,
		Interval:   m.opts.Interval,
		RunOnStart: true,
		OnTick:     m.scheduledScan,
		Logger:     m.logger,
		OnStop:     m.markStopped(m.generation),
	}

	if m.deps.Pruner != nil && m.opts.Retention > 0 && m.opts.RetentionInterval > 0 {
		cfg.SecondaryInterval = m.opts.RetentionInterval
		cfg.OnSecondaryTick = m.pruneDeliveries
	}

	go func() {
		defer worker.RecoverPanic(m.logger, workerName)

		if err := worker.SingleTickerLoop(loopCtx, cfg); err != nil && !errors.Is(err, context.Canceled) {
			m.logger.Error().Err(err).Msg("scan loop exited")
		}
	}()

	m.logger.Info().Dur("interval", m.opts.Interval).Msg("monitor started")

	return nil
}

// Stop disarms the scan timer. A scan in flight is allowed to finish.
// Stopping a stopped monitor is a no-op.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}

	m.cancel()
	m.cancel = nil
	m.running = false

	observability.MonitorRunning.Set(0)
	m.logger.Info().Msg("monitor stopped")
}

// markStopped clears the running flag when the loop of generation gen exits
// on its own, e.g. because the parent context was canceled.
func (m *Monitor) markStopped(gen uint64) func() {
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()

		if !m.running || m.generation != gen {
			return
		}

		m.cancel()
		m.cancel = nil
		m.running = false

		observability.MonitorRunning.Set(0)
	}
}

// scheduledScan runs a timer-driven scan, skipping the tick when another scan
// holds the lock. The scan context is detached from the loop so Stop lets an
// in-flight scan finish.
func (m *Monitor) scheduledScan(ctx context.Context) {
	if !m.scanMu.TryLock() {
		observability.ScansTotal.WithLabelValues(scanStatusSkipped).Inc()
		m.logger.Debug().Msg("previous scan still running, skipping tick")

		return
	}
	defer m.scanMu.Unlock()

	if _, err := m.scan(context.WithoutCancel(ctx)); err != nil {
		m.logger.Error().Err(err).Msg("scheduled scan failed")
	}
}

// RunScanNow performs one scan immediately regardless of the running state.
// It returns ErrScanInProgress when another scan is running.
func (m *Monitor) RunScanNow(ctx context.Context) (domain.ScanResult, error) {
	if m.deps.Notifier == nil {
		return domain.ScanResult{}, fmt.Errorf("run scan: %w", apperrors.ErrNotifierMissing)
	}

	if !m.scanMu.TryLock() {
		return domain.ScanResult{}, apperrors.ErrScanInProgress
	}
	defer m.scanMu.Unlock()

	return m.scan(ctx)
}

// RunWeeklyDigestNow sends the weekly digest to every weekly subscriber.
// It returns ErrDigestInProgress when another digest batch is running.
func (m *Monitor) RunWeeklyDigestNow(ctx context.Context) (domain.DigestResult, error) {
	if m.deps.Notifier == nil {
		return domain.DigestResult{}, fmt.Errorf("run weekly digest: %w", apperrors.ErrNotifierMissing)
	}

	if !m.digestMu.TryLock() {
		return domain.DigestResult{}, apperrors.ErrDigestInProgress
	}
	defer m.digestMu.Unlock()

	return m.runWeeklyDigest(ctx)
}

func (m *Monitor) pruneDeliveries(ctx context.Context) {
	removed, err := m.deps.Pruner.PruneDeliveryRecords(ctx, m.opts.Retention)
	if err != nil {
		m.logger.Warn().Err(err).Msg("delivery retention prune failed")

		return
	}

	observability.DeliveryRecordsPruned.Add(float64(removed))

	if removed > 0 {
		m.logger.Info().Int64(logFieldCount, removed).Msg("pruned old delivery records")
	}
}
