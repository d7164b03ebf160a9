package mocks

import (
	"context"
	"sync"
	"time"
)

// SentMessage is a message captured by Notifier.
type SentMessage struct {
	Handle string
	Text   string
}

// Notifier is a thread-safe recording implementation of ports.Notifier.
type Notifier struct {
	mu   sync.Mutex
	sent []SentMessage

	// FailFor lists channel handles whose sends fail with ErrSendFailed.
	FailFor map[string]bool

	// SendFn allows overriding Send behavior.
	SendFn func(ctx context.Context, handle, text string) error
}

// NewNotifier creates a notifier that accepts every message.
func NewNotifier() *Notifier {
	return &Notifier{FailFor: make(map[string]bool)}
}

// Send records the message, failing for handles listed in FailFor.
func (n *Notifier) Send(ctx context.Context, handle, text string) error {
	if n.SendFn != nil {
		if err := n.SendFn(ctx, handle, text); err != nil {
			return err
		}
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if n.FailFor[handle] {
		return ErrSendFailed
	}

	n.sent = append(n.sent, SentMessage{Handle: handle, Text: text})

	return nil
}

// Sent returns a snapshot of delivered messages.
func (n *Notifier) Sent() []SentMessage {
	n.mu.Lock()
	defer n.mu.Unlock()

	out := make([]SentMessage, len(n.sent))
	copy(out, n.sent)

	return out
}

// SentTo returns messages delivered to handle.
func (n *Notifier) SentTo(handle string) []string {
	n.mu.Lock()
	defer n.mu.Unlock()

	var out []string

	for _, m := range n.sent {
		if m.Handle == handle {
			out = append(out, m.Text)
		}
	}

	return out
}

// Clock is a manually advanced implementation of ports.Clock.
type Clock struct {
	mu  sync.RWMutex
	now time.Time
}

// NewClock creates a clock frozen at now.
func NewClock(now time.Time) *Clock {
	return &Clock{now: now}
}

// Now returns the frozen time.
func (c *Clock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.now
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
}

// Set moves the clock to t.
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = t
}
