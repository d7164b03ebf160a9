package monitor

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/lueurxax/trend-notifier/internal/core/domain"
	apperrors "github.com/lueurxax/trend-notifier/internal/core/errors"
	"github.com/lueurxax/trend-notifier/internal/output/alerts"
	"github.com/lueurxax/trend-notifier/internal/platform/observability"
	"github.com/lueurxax/trend-notifier/internal/platform/worker"
	"github.com/lueurxax/trend-notifier/internal/process/scoring"
)

// WeeklyDigestTaskName is the persisted state key of the weekly digest task.
const WeeklyDigestTaskName = "weekly_digest"

const (
	digestStatusSent    = "sent"
	digestStatusFailed  = "failed"
	digestStatusSkipped = "skipped"
)

// runWeeklyDigest aggregates the trailing window and sends one digest per
// weekly subscriber. Only store failures abort the batch.
func (m *Monitor) runWeeklyDigest(ctx context.Context) (domain.DigestResult, error) {
	var res domain.DigestResult

	subs, err := m.deps.Subscribers.ListEnabledSubscribers(ctx, domain.ModeWeekly)
	if err != nil {
		return res, fmt.Errorf("%w: list weekly subscribers: %w", apperrors.ErrFetch, err)
	}

	if len(subs) == 0 {
		m.logger.Info().Msg("no weekly subscribers, digest not sent")

		return res, nil
	}

	to := m.deps.Clock.Now()
	from := to.Add(-m.opts.DigestWindow)

	items, err := m.deps.Content.ListItemsInWindow(ctx, from, to)
	if err != nil {
		return res, fmt.Errorf("%w: list items in window: %w", apperrors.ErrFetch, err)
	}

	scored := make([]domain.ScoredItem, 0, len(items))
	for _, item := range items {
		scored = append(scored, scoring.Evaluate(item, to))
	}

	digest := alerts.Aggregate(scored, from, to)
	if digest.Empty() {
		res.SkippedCount = len(subs)
		observability.DigestsTotal.WithLabelValues(digestStatusSkipped).Add(float64(len(subs)))
		m.logger.Info().Int(logFieldCount, len(subs)).Msg("no items in digest window, digest skipped")

		return res, nil
	}

	text := alerts.FormatWeeklyDigest(digest)

	var success, failed atomic.Int64

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
					failed.Add(1)
					m.logger.Error().
						Interface("panic", r).
						Str(logFieldSubscriber, sub.SubscriberID).
						Msg("weekly digest delivery panicked")
				}
			}()

			if m.deliverDigest(ctx, sub, text) {
				success.Add(1)
			} else {
				failed.Add(1)
			}

			return nil
		})
	}

	_ = g.Wait() //nolint:errcheck // goroutines never return errors, outcomes are recorded

	res.SuccessCount = int(success.Load())
	res.ErrorCount = int(failed.Load())

	if err := ctx.Err(); err != nil {
		res.SkippedCount = len(subs) - res.SuccessCount - res.ErrorCount
		m.logger.Warn().Err(err).Int("skipped", res.SkippedCount).Msg("weekly digest canceled")

		return res, fmt.Errorf("weekly digest canceled: %w", err)
	}

	m.logger.Info().
		Int("success", res.SuccessCount).
		Int("errors", res.ErrorCount).
		Int("items", digest.TotalItems).
		Msg("weekly digest completed")

	return res, nil
}

func (m *Monitor) deliverDigest(ctx context.Context, sub domain.SubscriberPreference, text string) bool {
	sendErr := m.send(ctx, sub.ChannelHandle, text)

	m.finishRecord(ctx, &domain.DeliveryRecord{
		SubscriberID: sub.SubscriberID,
		Mode:         domain.ModeWeekly,
		Channel:      domain.DefaultChannel,
		Message:      text,
		SentAt:       m.deps.Clock.Now(),
	}, sendErr)

	if sendErr != nil {
		observability.DigestsTotal.WithLabelValues(digestStatusFailed).Inc()
		m.logger.Warn().Err(sendErr).Str(logFieldSubscriber, sub.SubscriberID).Msg("weekly digest delivery failed")

		return false
	}

	observability.DigestsTotal.WithLabelValues(digestStatusSent).Inc()

	return true
}

// WeeklyDigestTask wraps RunWeeklyDigestNow as a scheduled task. A nil
// enabled func keeps the task always on.
func (m *Monitor) WeeklyDigestTask(schedule string, enabled func(ctx context.Context) bool) (*worker.WeeklyTask, error) {
	sched, err := worker.ParseSchedule(schedule)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrConfiguration, err)
	}

	return &worker.WeeklyTask{
		Name:      WeeklyDigestTaskName,
		Schedule:  sched,
		IsEnabled: enabled,
		Run: func(ctx context.Context, logger *zerolog.Logger) error {
			res, err := m.RunWeeklyDigestNow(ctx)
			if err != nil {
				return err
			}

			logger.Info().
				Int("success", res.SuccessCount).
				Int("errors", res.ErrorCount).
				Int("skipped", res.SkippedCount).
				Msg("scheduled weekly digest finished")

			return nil
		},
	}, nil
}
