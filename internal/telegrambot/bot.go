package telegrambot

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/lueurxax/trend-notifier/internal/control"
	"github.com/lueurxax/trend-notifier/internal/platform/htmlutils"
	db "github.com/lueurxax/trend-notifier/internal/storage"
)

// MaxMessageSize is the maximum size for a single Telegram message part.
const MaxMessageSize = 4000

const updateTimeoutSeconds = 60

// Sender is the part of the Bot API used to post messages.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// StatsSource reports delivery outcomes for /status.
type StatsSource interface {
	GetDeliveryStats(ctx context.Context, since time.Time) (db.DeliveryStats, error)
}

// Bot answers admin commands that drive the monitor.
type Bot struct {
	api    *tgbotapi.BotAPI
	sender Sender
	ctrl   control.Controller
	stats  StatsSource
	admins []int64
	logger *zerolog.Logger
}

// NewAPI connects to the Bot API with token.
func NewAPI(token string) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot api: %w", err)
	}

	return api, nil
}

// New creates an admin bot on top of an existing API client.
func New(api *tgbotapi.BotAPI, ctrl control.Controller, admins []int64, logger *zerolog.Logger) *Bot {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	return &Bot{
		api:    api,
		sender: api,
		ctrl:   ctrl,
		admins: admins,
		logger: logger,
	}
}

// SetStats enables the delivery summary in /status.
func (b *Bot) SetStats(stats StatsSource) {
	b.stats = stats
}

// Run polls updates until ctx is canceled. Monitors started by command live
// as long as ctx.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = updateTimeoutSeconds

	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	b.logger.Info().Str("username", b.api.Self.UserName).Msg("admin bot started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update := <-updates:
			if update.Message == nil || update.Message.From == nil {
				continue
			}

			if !b.isAdmin(update.Message.From.ID) {
				b.logger.Warn().Int64("user_id", update.Message.From.ID).Str("username", update.Message.From.UserName).Msg("Unauthorized access attempt")
				continue
			}

			b.handleMessage(ctx, update.Message)
		}
	}
}

func (b *Bot) isAdmin(userID int64) bool {
	for _, id := range b.admins {
		if id == userID {
			return true
		}
	}

	return false
}

func (b *Bot) reply(msg *tgbotapi.Message, text string) {
	for _, part := range htmlutils.SplitHTML(text, MaxMessageSize) {
		reply := tgbotapi.NewMessage(msg.Chat.ID, part)
		reply.ParseMode = tgbotapi.ModeHTML

		if _, err := b.sender.Send(reply); err != nil {
			b.logger.Error().Err(err).Msg("failed to send reply")
		}
	}
}
