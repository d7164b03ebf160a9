package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/lueurxax/trend-notifier/internal/core/domain"
)

// DeliveryLog is a thread-safe in-memory implementation of ports.DeliveryStore.
type DeliveryLog struct {
	mu      sync.RWMutex
	clock   *Clock
	records []domain.DeliveryRecord

	// AppendFn allows overriding AppendDeliveryRecord behavior.
	AppendFn func(ctx context.Context, rec *domain.DeliveryRecord) error

	// ExistsSentWithinFn allows overriding ExistsSentWithin behavior.
	ExistsSentWithinFn func(ctx context.Context, subscriberID, itemID string, window time.Duration) (bool, error)
}

// NewDeliveryLog creates a delivery log that evaluates windows against clock.
func NewDeliveryLog(clock *Clock) *DeliveryLog {
	return &DeliveryLog{clock: clock}
}

// AppendDeliveryRecord appends a copy of rec.
func (d *DeliveryLog) AppendDeliveryRecord(ctx context.Context, rec *domain.DeliveryRecord) error {
	if d.AppendFn != nil {
		return d.AppendFn(ctx, rec)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.records = append(d.records, *rec)

	return nil
}

// ExistsSentWithin reports whether a sent instant record exists for the pair
// with SentAt inside the trailing window.
func (d *DeliveryLog) ExistsSentWithin(ctx context.Context, subscriberID, itemID string, window time.Duration) (bool, error) {
	if d.ExistsSentWithinFn != nil {
		return d.ExistsSentWithinFn(ctx, subscriberID, itemID, window)
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	cutoff := d.clock.Now().Add(-window)

	for _, rec := range d.records {
		if rec.SubscriberID == subscriberID &&
			rec.ItemID == itemID &&
			rec.Mode == domain.ModeInstant &&
			rec.Status == domain.DeliveryStatusSent &&
			rec.SentAt.After(cutoff) {
			return true, nil
		}
	}

	return false, nil
}

// Records returns a snapshot of all appended records.
func (d *DeliveryLog) Records() []domain.DeliveryRecord {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]domain.DeliveryRecord, len(d.records))
	copy(out, d.records)

	return out
}

// CountFor returns the number of records for a subscriber with the given status.
func (d *DeliveryLog) CountFor(subscriberID string, status domain.DeliveryStatus) int {
	d.mu.RLock()
	defer d.mu.RUnlock()

	n := 0

	for _, rec := range d.records {
		if rec.SubscriberID == subscriberID && rec.Status == status {
			n++
		}
	}

	return n
}
