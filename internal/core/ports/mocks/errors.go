package mocks

import "errors"

var (
	// ErrStoreUnavailable is a canned store failure for tests.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrSendFailed is a canned notifier failure for tests.
	ErrSendFailed = errors.New("send failed")
)
