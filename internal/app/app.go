// Package app provides the main application bootstrap and runtime orchestration.
//
// The App type wires together all dependencies and exposes methods to run
// different operational modes:
//
//   - Serve mode: trend monitor, weekly digest scheduler, control API and
//     the optional admin bot in one process
//   - Scan mode: a single monitor scan, for cron-driven deployments
//   - Digest mode: the weekly digest scheduler alone, or one batch with --once
package app

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/lueurxax/trend-notifier/internal/control"
	"github.com/lueurxax/trend-notifier/internal/platform/config"
	"github.com/lueurxax/trend-notifier/internal/platform/observability"
	"github.com/lueurxax/trend-notifier/internal/platform/worker"
	"github.com/lueurxax/trend-notifier/internal/process/monitor"
	db "github.com/lueurxax/trend-notifier/internal/storage"
	"github.com/lueurxax/trend-notifier/internal/telegrambot"
)

const digestWorkerName = "weekly-digest-scheduler"

// App holds the application dependencies and provides methods to run different modes.
type App struct {
	cfg      *config.Config
	database *db.DB
	logger   *zerolog.Logger

	api *tgbotapi.BotAPI
}

// New creates a new App instance with the given dependencies.
func New(cfg *config.Config, database *db.DB, logger *zerolog.Logger) *App {
	return &App{
		cfg:      cfg,
		database: database,
		logger:   logger,
	}
}

// RunServe runs the monitor with its control surface until ctx is canceled.
func (a *App) RunServe(ctx context.Context) error {
	a.logger.Info().Msg("Starting serve mode")

	mon, err := a.newMonitor()
	if err != nil {
		return err
	}

	handler := control.NewHandler(ctx, mon, a.cfg.AdminToken, a.logger)
	srv := observability.NewServer(a.database, a.cfg.HealthPort, a.logger, handler)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.Start(gctx); err != nil {
			return fmt.Errorf("health server: %w", err)
		}

		return nil
	})

	if a.cfg.AutoStartMonitor {
		if err := mon.Start(gctx); err != nil {
			a.logger.Warn().Err(err).Msg("monitor not started")
		}
	}

	if a.cfg.WeeklyDigestEnabled {
		scheduler, err := a.newDigestScheduler(mon)
		if err != nil {
			return err
		}

		g.Go(func() error {
			return a.runDigestScheduler(gctx, scheduler)
		})
	}

	if a.api != nil && len(a.cfg.AdminIDs) > 0 {
		bot := telegrambot.New(a.api, mon, a.cfg.AdminIDs, a.logger)
		bot.SetStats(a.database)

		g.Go(func() error {
			if err := bot.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("bot run: %w", err)
			}

			return nil
		})
	}

	<-gctx.Done()
	mon.Stop()

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	return ctx.Err()
}

// RunScan runs a single scan and exits.
func (a *App) RunScan(ctx context.Context) error {
	a.logger.Info().Msg("Starting scan mode")

	mon, err := a.newMonitor()
	if err != nil {
		return err
	}

	res, err := mon.RunScanNow(ctx)
	if err != nil {
		return fmt.Errorf("scan: %w", err)
	}

	a.logger.Info().
		Int("items", res.Items).
		Int("sent", res.Sent).
		Int("failed", res.Failed).
		Int("suppressed", res.Suppressed).
		Dur("duration", res.Duration).
		Msg("scan finished")

	return nil
}

// RunDigest runs the weekly digest scheduler. With once set it sends one
// digest batch immediately and returns.
func (a *App) RunDigest(ctx context.Context, once bool) error {
	a.logger.Info().Bool("once", once).Msg("Starting digest mode")

	mon, err := a.newMonitor()
	if err != nil {
		return err
	}

	if once {
		res, err := mon.RunWeeklyDigestNow(ctx)
		if err != nil {
			return fmt.Errorf("weekly digest: %w", err)
		}

		a.logger.Info().
			Int("success", res.SuccessCount).
			Int("errors", res.ErrorCount).
			Int("skipped", res.SkippedCount).
			Msg("weekly digest finished")

		return nil
	}

	scheduler, err := a.newDigestScheduler(mon)
	if err != nil {
		return err
	}

	return a.runDigestScheduler(ctx, scheduler)
}

func (a *App) newMonitor() (*monitor.Monitor, error) {
	watermarkStart, err := a.cfg.WatermarkStartTime()
	if err != nil {
		return nil, fmt.Errorf("watermark start: %w", err)
	}

	deps := monitor.Deps{
		Content:     a.database,
		Subscribers: a.database,
		Deliveries:  a.database,
		Watermarks:  a.database,
		Pruner:      a.database,
	}

	notifier, err := a.newNotifier()
	if err != nil {
		return nil, err
	}

	if notifier != nil {
		deps.Notifier = notifier
	}

	if a.cfg.ScanLockEnabled {
		deps.Locker = a.database
	}

	opts := monitor.Options{
		Interval:          a.cfg.ScanInterval,
		NotifierTimeout:   a.cfg.NotifierTimeout,
		DedupWindow:       a.cfg.DedupWindow,
		Workers:           a.cfg.DispatchWorkers,
		DigestWindow:      a.cfg.DigestWindow,
		Retention:         a.cfg.DeliveryRetention,
		RetentionInterval: a.cfg.RetentionInterval,
		WatermarkStart:    watermarkStart,
	}

	return monitor.New(deps, opts, a.logger), nil
}

// newNotifier returns nil without a bot token; the monitor then refuses to start.
func (a *App) newNotifier() (*telegrambot.Notifier, error) {
	if a.cfg.BotToken == "" {
		a.logger.Warn().Msg("BOT_TOKEN is empty, notifications are disabled")

		return nil, nil //nolint:nilnil // absent notifier is a valid state
	}

	if a.api == nil {
		api, err := telegrambot.NewAPI(a.cfg.BotToken)
		if err != nil {
			return nil, err
		}

		a.api = api
	}

	return telegrambot.NewNotifier(a.api, a.cfg.NotifierRPS, a.cfg.NotifierBurst, a.logger), nil
}

func (a *App) newDigestScheduler(mon *monitor.Monitor) (*worker.WeeklyScheduler, error) {
	task, err := mon.WeeklyDigestTask(a.cfg.WeeklyDigestSchedule, nil)
	if err != nil {
		return nil, err
	}

	scheduler := worker.NewWeeklyScheduler(a.database, a.logger)
	scheduler.AddTask(task)

	return scheduler, nil
}

func (a *App) runDigestScheduler(ctx context.Context, scheduler *worker.WeeklyScheduler) error {
	err := worker.SingleTickerLoop(ctx, worker.SingleTickerConfig{
		Name:       digestWorkerName,
		Interval:   a.cfg.DigestCheckInterval,
		RunOnStart: true,
		OnTick:     scheduler.CheckAndRun,
		Logger:     a.logger,
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("digest scheduler: %w", err)
	}

	return nil
}
