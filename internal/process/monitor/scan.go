package monitor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lueurxax/trend-notifier/internal/core/domain"
	apperrors "github.com/lueurxax/trend-notifier/internal/core/errors"
	"github.com/lueurxax/trend-notifier/internal/output/alerts"
	"github.com/lueurxax/trend-notifier/internal/platform/observability"
	"github.com/lueurxax/trend-notifier/internal/platform/worker"
	"github.com/lueurxax/trend-notifier/internal/process/matching"
	"github.com/lueurxax/trend-notifier/internal/process/scoring"
)

const (
	scanStatusOK         = "ok"
	scanStatusEmpty      = "empty"
	scanStatusFetchError = "fetch_error"
	scanStatusSkipped    = "skipped"
	scanStatusLocked     = "locked"
	scanStatusCanceled   = "canceled"
)

// scanCounters are shared by the dispatch goroutines of one scan.
type scanCounters struct {
	matched    atomic.Int64
	sent       atomic.Int64
	failed     atomic.Int64
	suppressed atomic.Int64
}

func (c *scanCounters) apply(res *domain.ScanResult) {
	res.Matched = int(c.matched.Load())
	res.Sent = int(c.sent.Load())
	res.Failed = int(c.failed.Load())
	res.Suppressed = int(c.suppressed.Load())
}

// scan performs one pass over items created since the watermark. The caller
// must hold scanMu.
func (m *Monitor) scan(ctx context.Context) (res domain.ScanResult, err error) {
	started := m.deps.Clock.Now()

	defer func() {
		res.Duration = m.deps.Clock.Now().Sub(started)
		observability.ScanDurationSeconds.Observe(res.Duration.Seconds())
	}()

	if m.deps.Locker != nil {
		unlock, acquired, lockErr := m.deps.Locker.TryLockScan(ctx)
		if lockErr != nil {
			observability.ScansTotal.WithLabelValues(scanStatusFetchError).Inc()

			return res, fmt.Errorf("acquire scan lock: %w", lockErr)
		}

		if !acquired {
			observability.ScansTotal.WithLabelValues(scanStatusLocked).Inc()
			m.logger.Debug().Msg("scan lock held by another instance, skipping")

			return res, nil
		}

		defer func() {
			if unlockErr := unlock(context.WithoutCancel(ctx)); unlockErr != nil {
				m.logger.Warn().Err(unlockErr).Msg("release scan lock failed")
			}
		}()
	}

	since, err := m.loadWatermark(ctx)
	if err != nil {
		observability.ScansTotal.WithLabelValues(scanStatusFetchError).Inc()

		return res, err
	}

	items, err := m.deps.Content.ListItemsSince(ctx, since)
	if err != nil {
		observability.ScansTotal.WithLabelValues(scanStatusFetchError).Inc()
		m.logger.Error().Err(err).Time(logFieldWatermark, since).Msg("fetch new items failed, watermark unchanged")

		return res, fmt.Errorf("%w: list items since %s: %w", apperrors.ErrFetch, since.Format(time.RFC3339), err)
	}

	res.Items = len(items)
	observability.ScanItems.Observe(float64(len(items)))

	if len(items) == 0 {
		observability.ScansTotal.WithLabelValues(scanStatusEmpty).Inc()

		return res, m.advanceWatermark(ctx)
	}

	subs, err := m.deps.Subscribers.ListEnabledSubscribers(ctx, domain.ModeInstant)
	if err != nil {
		observability.ScansTotal.WithLabelValues(scanStatusFetchError).Inc()
		m.logger.Error().Err(err).Msg("fetch instant subscribers failed, watermark unchanged")

		return res, fmt.Errorf("%w: list instant subscribers: %w", apperrors.ErrFetch, err)
	}

	now := m.deps.Clock.Now()

	var counters scanCounters

	for _, item := range items {
		if ctx.Err() != nil {
			break
		}

		scored := scoring.Evaluate(item, now)

		observability.ItemScore.Observe(scored.Score)
		observability.ItemsCategorized.WithLabelValues(string(scored.Category)).Inc()

		m.dispatchItem(ctx, scored, subs, &counters)
	}

	counters.apply(&res)

	if err := ctx.Err(); err != nil {
		observability.ScansTotal.WithLabelValues(scanStatusCanceled).Inc()
		m.logger.Warn().Err(err).Int("sent", res.Sent).Msg("scan canceled, watermark unchanged")

		return res, fmt.Errorf("scan canceled: %w", err)
	}

	observability.ScansTotal.WithLabelValues(scanStatusOK).Inc()

	m.logger.Info().
		Int("items", res.Items).
		Int("matched", res.Matched).
		Int("sent", res.Sent).
		Int("failed", res.Failed).
		Int("suppressed", res.Suppressed).
		Msg("scan completed")

	return res, m.advanceWatermark(ctx)
}

// loadWatermark returns the persisted watermark. A cold start uses the
// configured seed or the current time and persists it.
func (m *Monitor) loadWatermark(ctx context.Context) (time.Time, error) {
	since, err := m.deps.Watermarks.LoadWatermark(ctx)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: load watermark: %w", apperrors.ErrFetch, err)
	}

	if since.IsZero() {
		since = m.opts.WatermarkStart
		if since.IsZero() {
			since = m.deps.Clock.Now()
		}

		if err := m.deps.Watermarks.SaveWatermark(ctx, since); err != nil {
			m.logger.Warn().Err(err).Msg("persist initial watermark failed")
		}

		m.logger.Info().Time(logFieldWatermark, since).Msg("initialized scan watermark")
	}

	m.setLastScannedAt(since)

	return since, nil
}

// advanceWatermark moves the watermark to the current time, not to the newest
// item timestamp.
func (m *Monitor) advanceWatermark(ctx context.Context) error {
	now := m.deps.Clock.Now()

	m.setLastScannedAt(now)
	observability.WatermarkTimestamp.Set(float64(now.Unix()))

	if err := m.deps.Watermarks.SaveWatermark(ctx, now); err != nil {
		m.logger.Error().Err(err).Time(logFieldWatermark, now).Msg("persist watermark failed")

		return fmt.Errorf("save watermark: %w", err)
	}

	return nil
}

// dispatchItem fans one item out to subscribers with bounded parallelism.
// Once ctx is done no further sends are started and nothing is recorded for
// them.
func (m *Monitor) dispatchItem(ctx context.Context, scored domain.ScoredItem, subs []domain.SubscriberPreference, counters *scanCounters) {
	var g errgroup.Group

	g.SetLimit(m.opts.Workers)

	for _, sub := range subs {
		if ctx.Err() != nil {
			break
		}

		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}

			defer func() {
				if r := recover(); r != nil {
					counters.failed.Add(1)
					m.logger.Error().
						Interface("panic", r).
						Str(logFieldSubscriber, sub.SubscriberID).
						Str(logFieldItem, scored.ID).
						Msg("instant delivery panicked")
				}
			}()

			m.deliverInstant(ctx, scored, sub, counters)

			return nil
		})
	}

	_ = g.Wait() //nolint:errcheck // goroutines never return errors, outcomes are recorded
}

// deliverInstant runs matcher, dedup guard and notifier for one subscriber and
// records the outcome. Failures stay local to the subscriber.
func (m *Monitor) deliverInstant(ctx context.Context, scored domain.ScoredItem, sub domain.SubscriberPreference, counters *scanCounters) {
	if !matching.Matches(scored, sub) {
		return
	}

	counters.matched.Add(1)

	if m.guard.ShouldSuppress(ctx, sub.SubscriberID, scored.ID) {
		counters.suppressed.Add(1)
		observability.DeliveriesSuppressed.Inc()

		return
	}

	text := alerts.FormatInstantAlert(scored)
	sendErr := m.send(ctx, sub.ChannelHandle, text)

	rec := &domain.DeliveryRecord{
		SubscriberID: sub.SubscriberID,
		ItemID:       scored.ID,
		Mode:         domain.ModeInstant,
		Channel:      domain.DefaultChannel,
		Message:      text,
		SentAt:       m.deps.Clock.Now(),
		Metadata: domain.DeliveryMetadata{
			Score:    scored.Score,
			Category: scored.Category,
		},
	}

	m.finishRecord(ctx, rec, sendErr)

	if sendErr != nil {
		counters.failed.Add(1)
		m.logger.Warn().
			Err(sendErr).
			Str(logFieldSubscriber, sub.SubscriberID).
			Str(logFieldItem, scored.ID).
			Msg("instant alert delivery failed")

		return
	}

	counters.sent.Add(1)
}

// send calls the notifier bounded by the notifier timeout. Errors wrap
// ErrDelivery, and ErrDeliveryTimeout when the deadline passed.
func (m *Monitor) send(ctx context.Context, handle, text string) error {
	if strings.TrimSpace(handle) == "" {
		return fmt.Errorf("%w: %w", apperrors.ErrDelivery, apperrors.ErrEmptyHandle)
	}

	started := time.Now()

	err := worker.RunWithTimeout(ctx, m.opts.NotifierTimeout, func(ctx context.Context) error {
		return m.deps.Notifier.Send(ctx, handle, text)
	})

	observability.NotifierSendDuration.Observe(time.Since(started).Seconds())

	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %w after %s", apperrors.ErrDelivery, apperrors.ErrDeliveryTimeout, m.opts.NotifierTimeout)
	default:
		return fmt.Errorf("%w: %w", apperrors.ErrDelivery, err)
	}
}

// finishRecord sets the outcome on rec and appends it to the delivery log.
// A failed append is logged and counted.
func (m *Monitor) finishRecord(ctx context.Context, rec *domain.DeliveryRecord, sendErr error) {
	rec.Status = domain.DeliveryStatusSent
	if sendErr != nil {
		rec.Status = domain.DeliveryStatusFailed
		rec.Error = sendErr.Error()
	}

	observability.DeliveriesTotal.WithLabelValues(string(rec.Mode), string(rec.Status)).Inc()

	if err := m.deps.Deliveries.AppendDeliveryRecord(context.WithoutCancel(ctx), rec); err != nil {
		observability.DeliveryRecordErrors.Inc()
		m.logger.Error().
			Err(err).
			Str(logFieldSubscriber, rec.SubscriberID).
			Str(logFieldItem, rec.ItemID).
			Str(logFieldMode, string(rec.Mode)).
			Msg("append delivery record failed")
	}
}
