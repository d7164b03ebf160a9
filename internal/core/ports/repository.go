// Package ports provides domain-centric interfaces for external dependencies.
// These interfaces follow the ports and adapters (hexagonal) architecture pattern,
// allowing business logic to remain independent of infrastructure concerns.
package ports

import (
	"context"
	"time"

	"github.com/lueurxax/trend-notifier/internal/core/domain"
)

// ContentStore provides read access to ingested content items.
type ContentStore interface {
	// ListItemsSince returns items with CreatedAt >= since, newest first.
	ListItemsSince(ctx context.Context, since time.Time) ([]domain.ContentItem, error)
	// ListItemsInWindow returns items with from <= CreatedAt < to, newest first.
	ListItemsInWindow(ctx context.Context, from, to time.Time) ([]domain.ContentItem, error)
}

// SubscriberStore provides read access to subscriber preferences.
type SubscriberStore interface {
	ListEnabledSubscribers(ctx context.Context, mode domain.NotificationMode) ([]domain.SubscriberPreference, error)
}

// DeliveryStore is the append-only delivery log.
type DeliveryStore interface {
	AppendDeliveryRecord(ctx context.Context, rec *domain.DeliveryRecord) error
	ExistsSentWithin(ctx context.Context, subscriberID, itemID string, window time.Duration) (bool, error)
}

// WatermarkStore persists the monitor scan watermark.
type WatermarkStore interface {
	// LoadWatermark returns the zero time when nothing has been saved yet.
	LoadWatermark(ctx context.Context) (time.Time, error)
	SaveWatermark(ctx context.Context, at time.Time) error
}

// TaskStateStore persists last-run timestamps of scheduled tasks.
type TaskStateStore interface {
	LoadLastRun(ctx context.Context, task string) (time.Time, error)
	SaveLastRun(ctx context.Context, task string, at time.Time) error
}

// Notifier delivers a formatted message to a subscriber channel handle.
type Notifier interface {
	Send(ctx context.Context, channelHandle, text string) error
}

// Clock abstracts the current time so scoring and windows stay testable.
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall clock.
type SystemClock struct{}

// Now returns time.Now in UTC.
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}
