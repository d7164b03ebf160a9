// Package dedup suppresses repeat instant alerts for the same subscriber and item.
package dedup

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/lueurxax/trend-notifier/internal/platform/observability"
)

// DefaultWindow is the trailing horizon in which a repeat alert is suppressed.
const DefaultWindow = time.Hour

const (
	logFieldSubscriber = "subscriber_id"
	logFieldItem       = "item_id"
)

// Repository answers whether a sent instant delivery exists inside a window.
type Repository interface {
	ExistsSentWithin(ctx context.Context, subscriberID, itemID string, window time.Duration) (bool, error)
}

// Guard gates instant deliveries against the delivery log.
type Guard struct {
	database Repository
	window   time.Duration
	logger   *zerolog.Logger
}

// NewGuard creates a guard. A non-positive window falls back to DefaultWindow.
func NewGuard(database Repository, window time.Duration, logger *zerolog.Logger) *Guard {
	if window <= 0 {
		window = DefaultWindow
	}

	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	return &Guard{
		database: database,
		window:   window,
		logger:   logger,
	}
}

// Window returns the suppression horizon.
func (g *Guard) Window() time.Duration {
	return g.window
}

// ShouldSuppress reports whether subscriberID was already sent itemID inside
// the window. Lookup failures fail open: a possible duplicate is preferred
// over a silently dropped alert.
func (g *Guard) ShouldSuppress(ctx context.Context, subscriberID, itemID string) bool {
	exists, err := g.database.ExistsSentWithin(ctx, subscriberID, itemID, g.window)
	if err != nil {
		observability.DedupLookupErrors.Inc()
		g.logger.Warn().
			Err(err).
			Str(logFieldSubscriber, subscriberID).
			Str(logFieldItem, itemID).
			Msg("dedup lookup failed, not suppressing")

		return false
	}

	return exists
}
