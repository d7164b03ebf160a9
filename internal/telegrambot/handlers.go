package telegrambot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	apperrors "github.com/lueurxax/trend-notifier/internal/core/errors"
)

const (
	timeFormat  = "2006-01-02 15:04:05 MST"
	statsWindow = 24 * time.Hour
)

const helpText = `🤖 <b>Trend monitor</b>

/status - monitor state and last scan
/startmonitor - arm the scan timer
/stopmonitor - disarm the scan timer
/scan - run one scan now
/digest - send the weekly digest now
/help - this message`

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if !msg.IsCommand() {
		return
	}

	b.logger.Info().Str("command", msg.Command()).Int64("user_id", msg.From.ID).Msg("Handling command")

	switch msg.Command() {
	case "start", "help":
		b.reply(msg, helpText)
	case "status":
		b.handleStatus(ctx, msg)
	case "startmonitor":
		b.handleStartMonitor(ctx, msg)
	case "stopmonitor":
		b.handleStopMonitor(msg)
	case "scan":
		b.handleScan(ctx, msg)
	case "digest":
		b.handleDigest(ctx, msg)
	default:
		b.reply(msg, "Unknown command")
	}
}

func (b *Bot) handleStatus(ctx context.Context, msg *tgbotapi.Message) {
	status := b.ctrl.Status()

	var sb strings.Builder

	sb.WriteString("📊 <b>Monitor Status</b>\n\n")

	if status.Running {
		sb.WriteString("• <b>State:</b> 🟢 running\n")
	} else {
		sb.WriteString("• <b>State:</b> 🔴 stopped\n")
	}

	fmt.Fprintf(&sb, "• <b>Interval:</b> <code>%s</code>\n", time.Duration(status.IntervalSeconds)*time.Second)

	if status.LastScannedAt.IsZero() {
		sb.WriteString("• <b>Last scan:</b> <code>None</code>\n")
	} else {
		fmt.Fprintf(&sb, "• <b>Last scan:</b> <code>%s</code>\n", status.LastScannedAt.UTC().Format(timeFormat))
	}

	b.writeDeliveryStats(ctx, &sb)

	b.reply(msg, sb.String())
}

func (b *Bot) writeDeliveryStats(ctx context.Context, sb *strings.Builder) {
	if b.stats == nil {
		return
	}

	stats, err := b.stats.GetDeliveryStats(ctx, time.Now().Add(-statsWindow))
	if err != nil {
		b.logger.Warn().Err(err).Msg("failed to load delivery stats")

		return
	}

	sb.WriteString("\n📨 <b>Deliveries (24h)</b>\n")
	fmt.Fprintf(sb, "• <b>Sent:</b> <code>%d</code>\n", stats.Sent)
	fmt.Fprintf(sb, "• <b>Failed:</b> <code>%d</code>\n", stats.Failed)
}

func (b *Bot) handleStartMonitor(ctx context.Context, msg *tgbotapi.Message) {
	if err := b.ctrl.Start(ctx); err != nil {
		b.reply(msg, fmt.Sprintf("❌ Cannot start monitor: %s", html.EscapeString(err.Error())))

		return
	}

	b.reply(msg, "✅ Monitor running.")
}

func (b *Bot) handleStopMonitor(msg *tgbotapi.Message) {
	b.ctrl.Stop()
	b.reply(msg, "⏸ Monitor stopped.")
}

func (b *Bot) handleScan(ctx context.Context, msg *tgbotapi.Message) {
	res, err := b.ctrl.RunScanNow(ctx)
	if err != nil {
		b.replyError(msg, "Scan", err)

		return
	}

	b.reply(msg, fmt.Sprintf(
		"🔎 <b>Scan finished</b> in %s\n\n• Items: <code>%d</code>\n• Matched: <code>%d</code>\n• Sent: <code>%d</code>\n• Failed: <code>%d</code>\n• Suppressed: <code>%d</code>",
		res.Duration.Round(time.Millisecond), res.Items, res.Matched, res.Sent, res.Failed, res.Suppressed,
	))
}

func (b *Bot) handleDigest(ctx context.Context, msg *tgbotapi.Message) {
	res, err := b.ctrl.RunWeeklyDigestNow(ctx)
	if err != nil {
		b.replyError(msg, "Digest", err)

		return
	}

	b.reply(msg, fmt.Sprintf(
		"📬 <b>Weekly digest sent</b>\n\n• Delivered: <code>%d</code>\n• Failed: <code>%d</code>\n• Skipped: <code>%d</code>",
		res.SuccessCount, res.ErrorCount, res.SkippedCount,
	))
}

func (b *Bot) replyError(msg *tgbotapi.Message, action string, err error) {
	if errors.Is(err, apperrors.ErrScanInProgress) || errors.Is(err, apperrors.ErrDigestInProgress) {
		b.reply(msg, fmt.Sprintf("⏳ %s already in progress, try again shortly.", action))

		return
	}

	b.logger.Error().Err(err).Str("action", action).Msg("admin command failed")
	b.reply(msg, fmt.Sprintf("❌ %s failed: %s", action, html.EscapeString(err.Error())))
}
