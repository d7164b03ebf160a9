// Package errors provides centralized error definitions for the application.
// Errors are organized by domain to avoid duplication and provide consistent naming.
//
// Naming conventions:
//   - Exported errors (Err*): Use for errors that callers need to check with errors.Is
//   - Unexported errors (err*): Use for internal package errors
//   - All sentinel errors should be defined as variables, not inline errors.New calls
//   - Use fmt.Errorf with %w to wrap sentinel errors with context
package errors

import "errors"

// Store errors.
var (
	// ErrFetch indicates a store could not be read. The current scan or digest
	// cycle is aborted and retried on the next tick.
	ErrFetch = errors.New("fetch failed")
)

// Delivery errors.
var (
	// ErrDelivery indicates a single send failed. It is recorded, never propagated.
	ErrDelivery = errors.New("delivery failed")

	// ErrDeliveryTimeout indicates the notifier did not answer in time.
	ErrDeliveryTimeout = errors.New("delivery timed out")

	// ErrEmptyHandle indicates a subscriber has no channel handle.
	ErrEmptyHandle = errors.New("empty channel handle")

	// ErrPanic indicates a call panicked and the panic was turned into an error.
	ErrPanic = errors.New("recovered panic")
)

// Configuration errors.
var (
	// ErrConfiguration indicates required configuration is missing or invalid.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrNotifierMissing indicates the monitor was started without a notifier.
	ErrNotifierMissing = errors.New("notifier not configured")
)

// Monitor errors.
var (
	// ErrScanInProgress indicates a scan was requested while another one runs.
	ErrScanInProgress = errors.New("scan already in progress")

	// ErrDigestInProgress indicates a digest was requested while another one runs.
	ErrDigestInProgress = errors.New("digest already in progress")
)

// Validation errors.
var (
	// ErrInvalidInput indicates invalid input was provided.
	ErrInvalidInput = errors.New("invalid input")
)

// Is is a convenience wrapper around errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As is a convenience wrapper around errors.As.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
