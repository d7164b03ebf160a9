package mocks

import (
	"context"
	"sync"

	"github.com/lueurxax/trend-notifier/internal/core/domain"
)

// SubscriberStore is a thread-safe in-memory implementation of ports.SubscriberStore.
type SubscriberStore struct {
	mu   sync.RWMutex
	subs []domain.SubscriberPreference

	// ListEnabledSubscribersFn allows overriding ListEnabledSubscribers behavior.
	ListEnabledSubscribersFn func(ctx context.Context, mode domain.NotificationMode) ([]domain.SubscriberPreference, error)
}

// NewSubscriberStore creates a new mock subscriber store.
func NewSubscriberStore(subs ...domain.SubscriberPreference) *SubscriberStore {
	return &SubscriberStore{subs: subs}
}

// Add appends subscribers.
func (s *SubscriberStore) Add(subs ...domain.SubscriberPreference) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.subs = append(s.subs, subs...)
}

// ListEnabledSubscribers returns enabled subscribers that have the mode switched on.
func (s *SubscriberStore) ListEnabledSubscribers(ctx context.Context, mode domain.NotificationMode) ([]domain.SubscriberPreference, error) {
	if s.ListEnabledSubscribersFn != nil {
		return s.ListEnabledSubscribersFn(ctx, mode)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.SubscriberPreference, 0, len(s.subs))

	for _, sub := range s.subs {
		if sub.Enabled && sub.Modes.Enabled(mode) {
			out = append(out, sub)
		}
	}

	return out, nil
}
