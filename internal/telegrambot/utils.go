package telegrambot

import (
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	apperrors "github.com/lueurxax/trend-notifier/internal/core/errors"
)

// chatTarget is either a numeric chat ID or a public @username.
type chatTarget struct {
	chatID   int64
	username string
}

func (t chatTarget) message(text string) tgbotapi.MessageConfig {
	if t.username != "" {
		return tgbotapi.NewMessageToChannel(t.username, text)
	}

	return tgbotapi.NewMessage(t.chatID, text)
}

// parseHandle accepts "-100123", "123" or "@channel" and "channel".
func parseHandle(handle string) (chatTarget, error) {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return chatTarget{}, fmt.Errorf("%w: %w", apperrors.ErrDelivery, apperrors.ErrEmptyHandle)
	}

	if id, err := strconv.ParseInt(handle, 10, 64); err == nil {
		return chatTarget{chatID: id}, nil
	}

	if !strings.HasPrefix(handle, "@") {
		handle = "@" + handle
	}

	return chatTarget{username: handle}, nil
}
