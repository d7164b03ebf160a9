// Package mocks provides test doubles for ports interfaces.
//
// These mocks are designed to be simple, thread-safe, in-memory implementations
// suitable for unit testing. Each mock provides:
//
//   - Default behavior that returns reasonable test values
//   - Callback functions (xxxFn) for customizing behavior per test
//   - Helper methods for setting state directly
//   - Reset methods for test isolation
//
// # Usage Example
//
//	func TestMonitor(t *testing.T) {
//		clock := mocks.NewClock(time.Now())
//		content := mocks.NewContentStore()
//		content.Add(domain.ContentItem{ID: "1", Title: "AI news", CreatedAt: clock.Now()})
//
//		deliveries := mocks.NewDeliveryLog(clock)
//		// ... wire the monitor and assert on deliveries.Records()
//	}
//
// # Available Mocks
//
//   - ContentStore: implements ports.ContentStore
//   - SubscriberStore: implements ports.SubscriberStore
//   - DeliveryLog: implements ports.DeliveryStore
//   - StateStore: implements ports.WatermarkStore and ports.TaskStateStore
//   - Notifier: implements ports.Notifier
//   - Clock: implements ports.Clock
package mocks
