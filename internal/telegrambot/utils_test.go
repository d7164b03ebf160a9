package telegrambot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/lueurxax/trend-notifier/internal/core/errors"
)

func TestParseHandle(t *testing.T) {
	tests := []struct {
		handle   string
		chatID   int64
		username string
	}{
		{handle: "-1001234567890", chatID: -1001234567890},
		{handle: "42", chatID: 42},
		{handle: "@trends", username: "@trends"},
		{handle: "trends", username: "@trends"},
		{handle: "  @spaced ", username: "@spaced"},
	}

	for _, tt := range tests {
		t.Run(tt.handle, func(t *testing.T) {
			target, err := parseHandle(tt.handle)
			require.NoError(t, err)
			assert.Equal(t, tt.chatID, target.chatID)
			assert.Equal(t, tt.username, target.username)
		})
	}

	_, err := parseHandle("  ")
	assert.ErrorIs(t, err, apperrors.ErrDelivery)
	assert.ErrorIs(t, err, apperrors.ErrEmptyHandle)
}
