package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/lueurxax/trend-notifier/internal/core/errors"
)

func TestSingleTickerLoop_RunsOnStartAndTicks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var ticks, secondary atomic.Int32

	started := make(chan struct{})
	stopped := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		done <- SingleTickerLoop(ctx, SingleTickerConfig{
			Name:              "test",
			Interval:          10 * time.Millisecond,
			RunOnStart:        true,
			OnTick:            func(context.Context) { ticks.Add(1) },
			SecondaryInterval: 15 * time.Millisecond,
			OnSecondaryTick:   func(context.Context) { secondary.Add(1) },
			OnStart:           func(context.Context) { close(started) },
			OnStop:            func() { close(stopped) },
		})
	}()

	<-started
	assert.Eventually(t, func() bool { return ticks.Load() >= 3 && secondary.Load() >= 1 }, time.Second, 5*time.Millisecond)

	cancel()

	err := <-done
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	<-stopped
}

func TestSingleTickerLoop_RejectsZeroInterval(t *testing.T) {
	err := SingleTickerLoop(context.Background(), SingleTickerConfig{Name: "bad"})
	assert.Error(t, err)
}

func TestRunWithTimeout(t *testing.T) {
	err := RunWithTimeout(context.Background(), 10*time.Millisecond, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	assert.ErrorIs(t, err, context.DeadlineExceeded)

	err = RunWithTimeout(context.Background(), 0, func(ctx context.Context) error {
		_, hasDeadline := ctx.Deadline()
		assert.False(t, hasDeadline)

		return nil
	})
	assert.NoError(t, err)
}

func TestWait(t *testing.T) {
	assert.NoError(t, Wait(context.Background(), 0))
	assert.NoError(t, Wait(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, Wait(ctx, time.Hour), context.Canceled)
}

func TestRecoverPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		defer RecoverPanic(nil, "test")
		panic("boom")
	})
}

func TestRunWithTimeout_UnresponsiveFunction(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	start := time.Now()
	err := RunWithTimeout(context.Background(), 20*time.Millisecond, func(context.Context) error {
		<-release
		return nil
	})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}

func TestRunWithTimeout_PanicBecomesError(t *testing.T) {
	for _, timeout := range []time.Duration{0, time.Second} {
		var err error

		require.NotPanics(t, func() {
			err = RunWithTimeout(context.Background(), timeout, func(context.Context) error {
				panic("transport blew up")
			})
		})

		require.ErrorIs(t, err, apperrors.ErrPanic)
		assert.Contains(t, err.Error(), "transport blew up")
	}
}
