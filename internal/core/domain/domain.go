package domain

import "time"

// ContentItem is a single ingested piece of content. Items are owned by the
// ingestion side and are never modified by the notification engine.
type ContentItem struct {
	ID        string
	Title     string
	Body      string
	Source    string
	CreatedAt time.Time
}

// ScoredItem is a content item with its derived score and category.
// It is recomputed on every scan and never persisted.
type ScoredItem struct {
	ContentItem
	Score    float64
	Category Category
}

// NotificationMode selects which delivery flavour a subscriber receives.
type NotificationMode string

// Notification modes.
const (
	ModeInstant NotificationMode = "instant"
	ModeDaily   NotificationMode = "daily"
	ModeWeekly  NotificationMode = "weekly"
)

// NotificationModes holds the per-subscriber mode toggles.
type NotificationModes struct {
	Instant bool `json:"instant"`
	Daily   bool `json:"daily"`
	Weekly  bool `json:"weekly"`
}

// Enabled reports whether the given mode is switched on.
func (m NotificationModes) Enabled(mode NotificationMode) bool {
	switch mode {
	case ModeInstant:
		return m.Instant
	case ModeDaily:
		return m.Daily
	case ModeWeekly:
		return m.Weekly
	default:
		return false
	}
}

// SubscriberPreference describes who gets notified and about what.
// An empty Keywords or Categories set means no restriction on that axis.
type SubscriberPreference struct {
	SubscriberID  string
	ChannelHandle string
	Enabled       bool
	Keywords      []string
	Categories    []Category
	MinScore      float64
	Modes         NotificationModes
}

// DeliveryStatus is the outcome of a dispatch attempt.
type DeliveryStatus string

// Delivery statuses.
const (
	DeliveryStatusSent   DeliveryStatus = "sent"
	DeliveryStatusFailed DeliveryStatus = "failed"
)

// DefaultChannel is the only delivery channel the engine ships with.
const DefaultChannel = "telegram"

// DeliveryRecord is one entry of the append-only delivery log.
// ItemID is empty for digest deliveries.
type DeliveryRecord struct {
	ID           string
	SubscriberID string
	ItemID       string
	Mode         NotificationMode
	Channel      string
	Message      string
	Status       DeliveryStatus
	Error        string
	SentAt       time.Time
	Metadata     DeliveryMetadata
}

// DeliveryMetadata captures the scoring context of an instant delivery.
type DeliveryMetadata struct {
	Score    float64  `json:"score,omitempty"`
	Category Category `json:"category,omitempty"`
}

// ScanResult summarizes one monitor scan.
type ScanResult struct {
	Items      int
	Matched    int
	Sent       int
	Failed     int
	Suppressed int
	Duration   time.Duration
}

// DigestResult summarizes one weekly digest batch.
type DigestResult struct {
	SuccessCount int `json:"successCount"`
	ErrorCount   int `json:"errorCount"`
	SkippedCount int `json:"skippedCount"`
}
