package db

import "time"

// Table names.
const (
	tableContentItems  = "content_items"
	tableSubscribers   = "subscriber_preferences"
	tableDeliveries    = "delivery_records"
	tableScannerState  = "scanner_state"
	stateKeyWatermark  = "watermark"
	stateKeyTaskPrefix = "task:"
)

// Advisory lock identifiers.
const (
	// MigrationLockID serializes goose migrations across instances.
	MigrationLockID int64 = 1000
	// ScanLockID serializes monitor scans across instances.
	ScanLockID int64 = 1001
)

// Database connection constants
const (
	// ConnectionRetrySleep is the sleep duration between connection retries
	ConnectionRetrySleep = 2 * time.Second
	// maxConnectionRetries is the number of retries for initial connection
	maxConnectionRetries = 10
)

// Database pool default constants
const (
	defaultMaxConns          int32         = 10
	defaultMinConns          int32         = 2
	defaultMaxConnIdleTime   time.Duration = 30 * time.Minute
	defaultMaxConnLifetime   time.Duration = time.Hour
	defaultHealthCheckPeriod time.Duration = time.Minute
)
