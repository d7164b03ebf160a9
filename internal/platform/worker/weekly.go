package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// DefaultWeeklySchedule runs on Mondays at 09:00.
const DefaultWeeklySchedule = "0 9 * * 1"

// StateStore persists the last successful run of a task.
type StateStore interface {
	LoadLastRun(ctx context.Context, task string) (time.Time, error)
	SaveLastRun(ctx context.Context, task string, at time.Time) error
}

// WeeklyTask represents a task that runs on a cron schedule, typically weekly.
type WeeklyTask struct {
	// Name identifies the task for logging and persisted state.
	Name string

	// Schedule is the parsed cron schedule.
	Schedule cron.Schedule

	// IsEnabled returns whether the task is currently enabled.
	// If nil, task is always enabled.
	IsEnabled func(ctx context.Context) bool

	// Run executes the task.
	Run func(ctx context.Context, logger *zerolog.Logger) error

	// OnError is called when Run returns an error.
	// If nil, errors are only logged.
	OnError func(err error)

	// lastRun tracks when the task last executed successfully.
	lastRun time.Time
	loaded  bool
}

// ParseSchedule parses a standard five-field cron expression.
func ParseSchedule(spec string) (cron.Schedule, error) {
	sched, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("parse cron schedule %q: %w", spec, err)
	}

	return sched, nil
}

// WeeklyScheduler manages a collection of scheduled tasks.
type WeeklyScheduler struct {
	tasks  []*WeeklyTask
	state  StateStore
	now    func() time.Time
	logger *zerolog.Logger
}

// NewWeeklyScheduler creates a new task scheduler. state may be nil, in which
// case last-run times live only in memory.
func NewWeeklyScheduler(state StateStore, logger *zerolog.Logger) *WeeklyScheduler {
	return &WeeklyScheduler{
		tasks:  make([]*WeeklyTask, 0),
		state:  state,
		now:    time.Now,
		logger: getLogger(logger),
	}
}

// SetNowFunc replaces the time source, for tests.
func (ws *WeeklyScheduler) SetNowFunc(now func() time.Time) {
	ws.now = now
}

// AddTask adds a task to the scheduler.
func (ws *WeeklyScheduler) AddTask(task *WeeklyTask) {
	ws.tasks = append(ws.tasks, task)
}

// CheckAndRun checks all tasks and runs any that are due.
// Call this from your main scheduler loop.
func (ws *WeeklyScheduler) CheckAndRun(ctx context.Context) {
	for _, task := range ws.tasks {
		ws.checkAndRunTask(ctx, task)
	}
}

// checkAndRunTask checks if a single task should run and executes it if so.
func (ws *WeeklyScheduler) checkAndRunTask(ctx context.Context, task *WeeklyTask) {
	if task.IsEnabled != nil && !task.IsEnabled(ctx) {
		return
	}

	now := ws.now()

	ws.ensureLoaded(ctx, task, now)

	if !ShouldRun(now, task.Schedule, task.lastRun) {
		return
	}

	logger := ws.logger.With().Str(logFieldTask, task.Name).Logger()
	logger.Info().Msgf("Starting scheduled %s", task.Name)

	if err := task.Run(ctx, &logger); err != nil {
		logger.Error().Err(err).Msgf("failed to run scheduled %s", task.Name)

		if task.OnError != nil {
			task.OnError(err)
		}

		return
	}

	ws.setLastRun(ctx, task, now)
}

// ensureLoaded restores the persisted last run. A task that never ran is
// anchored at now so a cold start waits for the next occurrence.
func (ws *WeeklyScheduler) ensureLoaded(ctx context.Context, task *WeeklyTask, now time.Time) {
	if task.loaded {
		return
	}

	if ws.state != nil {
		lastRun, err := ws.state.LoadLastRun(ctx, task.Name)
		if err != nil {
			ws.logger.Warn().Err(err).Str(logFieldTask, task.Name).Msg("failed to load task state")
			return
		}

		task.lastRun = lastRun
	}

	task.loaded = true

	if task.lastRun.IsZero() {
		ws.setLastRun(ctx, task, now)
	}
}

func (ws *WeeklyScheduler) setLastRun(ctx context.Context, task *WeeklyTask, at time.Time) {
	task.lastRun = at

	if ws.state == nil {
		return
	}

	if err := ws.state.SaveLastRun(ctx, task.Name, at); err != nil {
		ws.logger.Warn().Err(err).Str(logFieldTask, task.Name).Msg("failed to save task state")
	}
}

// ShouldRun reports whether a schedule has an occurrence in (lastRun, now].
// A zero lastRun never runs; callers anchor it first.
func ShouldRun(now time.Time, schedule cron.Schedule, lastRun time.Time) bool {
	if schedule == nil || lastRun.IsZero() {
		return false
	}

	return !schedule.Next(lastRun).After(now)
}
