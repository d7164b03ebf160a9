package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/lueurxax/trend-notifier/internal/core/domain"
)

// ContentStore is a thread-safe in-memory implementation of ports.ContentStore.
type ContentStore struct {
	mu    sync.RWMutex
	items []domain.ContentItem

	// ListItemsSinceFn allows overriding ListItemsSince behavior.
	ListItemsSinceFn func(ctx context.Context, since time.Time) ([]domain.ContentItem, error)

	// ListItemsInWindowFn allows overriding ListItemsInWindow behavior.
	ListItemsInWindowFn func(ctx context.Context, from, to time.Time) ([]domain.ContentItem, error)
}

// NewContentStore creates a new mock content store.
func NewContentStore() *ContentStore {
	return &ContentStore{}
}

// Add stores items for later listing.
func (c *ContentStore) Add(items ...domain.ContentItem) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = append(c.items, items...)
}

// ListItemsSince returns items created at or after since, newest first.
func (c *ContentStore) ListItemsSince(ctx context.Context, since time.Time) ([]domain.ContentItem, error) {
	if c.ListItemsSinceFn != nil {
		return c.ListItemsSinceFn(ctx, since)
	}

	return c.filter(func(item domain.ContentItem) bool {
		return !item.CreatedAt.Before(since)
	}), nil
}

// ListItemsInWindow returns items created in [from, to), newest first.
func (c *ContentStore) ListItemsInWindow(ctx context.Context, from, to time.Time) ([]domain.ContentItem, error) {
	if c.ListItemsInWindowFn != nil {
		return c.ListItemsInWindowFn(ctx, from, to)
	}

	return c.filter(func(item domain.ContentItem) bool {
		return !item.CreatedAt.Before(from) && item.CreatedAt.Before(to)
	}), nil
}

func (c *ContentStore) filter(keep func(domain.ContentItem) bool) []domain.ContentItem {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]domain.ContentItem, 0, len(c.items))

	for _, item := range c.items {
		if keep(item) {
			out = append(out, item)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	return out
}

// Reset removes all items.
func (c *ContentStore) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = nil
}
