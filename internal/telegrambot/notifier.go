package telegrambot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	apperrors "github.com/lueurxax/trend-notifier/internal/core/errors"
	"github.com/lueurxax/trend-notifier/internal/platform/htmlutils"
)

// Notifier delivers alerts and digests to Telegram chats and channels.
type Notifier struct {
	sender  Sender
	limiter *rate.Limiter
	logger  *zerolog.Logger
}

// NewNotifier creates a notifier that sends at most rps messages per second
// with the given burst. A non-positive rps disables throttling.
func NewNotifier(sender Sender, rps float64, burst int, logger *zerolog.Logger) *Notifier {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	limit := rate.Limit(rps)
	if rps <= 0 {
		limit = rate.Inf
	}

	if burst <= 0 {
		burst = 1
	}

	return &Notifier{
		sender:  sender,
		limiter: rate.NewLimiter(limit, burst),
		logger:  logger,
	}
}

// Send posts text to the chat identified by handle, splitting long messages.
// Errors wrap ErrDelivery.
func (n *Notifier) Send(ctx context.Context, handle, text string) error {
	target, err := parseHandle(handle)
	if err != nil {
		return err
	}

	parts := htmlutils.SplitHTML(text, MaxMessageSize)

	for i, part := range parts {
		if err := n.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("%w: wait for send slot: %w", apperrors.ErrDelivery, err)
		}

		msg := target.message(part)
		msg.ParseMode = tgbotapi.ModeHTML
		msg.DisableWebPagePreview = true

		if _, err := n.sender.Send(msg); err != nil {
			return fmt.Errorf("%w: send part %d/%d to %s: %w", apperrors.ErrDelivery, i+1, len(parts), handle, err)
		}
	}

	n.logger.Debug().Str("handle", handle).Int("parts", len(parts)).Msg("telegram message sent")

	return nil
}
