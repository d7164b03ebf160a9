package mocks

import (
	"context"
	"sync"
	"time"
)

// StateStore is a thread-safe in-memory implementation of ports.WatermarkStore
// and ports.TaskStateStore.
type StateStore struct {
	mu        sync.RWMutex
	watermark time.Time
	lastRuns  map[string]time.Time

	// LoadWatermarkFn allows overriding LoadWatermark behavior.
	LoadWatermarkFn func(ctx context.Context) (time.Time, error)

	// SaveWatermarkFn allows overriding SaveWatermark behavior.
	SaveWatermarkFn func(ctx context.Context, at time.Time) error
}

// NewStateStore creates an empty state store.
func NewStateStore() *StateStore {
	return &StateStore{lastRuns: make(map[string]time.Time)}
}

// LoadWatermark returns the saved watermark or the zero time.
func (s *StateStore) LoadWatermark(ctx context.Context) (time.Time, error) {
	if s.LoadWatermarkFn != nil {
		return s.LoadWatermarkFn(ctx)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.watermark, nil
}

// SaveWatermark stores the watermark.
func (s *StateStore) SaveWatermark(ctx context.Context, at time.Time) error {
	if s.SaveWatermarkFn != nil {
		return s.SaveWatermarkFn(ctx, at)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.watermark = at

	return nil
}

// Watermark returns the stored watermark for assertions.
func (s *StateStore) Watermark() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.watermark
}

// LoadLastRun returns the last run time of task or the zero time.
func (s *StateStore) LoadLastRun(_ context.Context, task string) (time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.lastRuns[task], nil
}

// SaveLastRun stores the last run time of task.
func (s *StateStore) SaveLastRun(_ context.Context, task string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastRuns[task] = at

	return nil
}
