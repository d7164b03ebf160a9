package telegrambot

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/lueurxax/trend-notifier/internal/core/errors"
)

var errTelegramDown = errors.New("telegram down")

type fakeSender struct {
	mu     sync.Mutex
	sent   []tgbotapi.MessageConfig
	failAt int
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	msg, ok := c.(tgbotapi.MessageConfig)
	if !ok {
		return tgbotapi.Message{}, errors.New("unexpected chattable")
	}

	if f.failAt > 0 && len(f.sent)+1 == f.failAt {
		return tgbotapi.Message{}, errTelegramDown
	}

	f.sent = append(f.sent, msg)

	return tgbotapi.Message{MessageID: len(f.sent)}, nil
}

func (f *fakeSender) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]string, 0, len(f.sent))
	for _, m := range f.sent {
		out = append(out, m.Text)
	}

	return out
}

func TestNotifier_Send(t *testing.T) {
	sender := &fakeSender{}
	n := NewNotifier(sender, 0, 1, nil)

	require.NoError(t, n.Send(context.Background(), "-100500", "<b>Trending</b> now"))
	require.NoError(t, n.Send(context.Background(), "@channel", "hello"))

	require.Len(t, sender.sent, 2)
	assert.Equal(t, int64(-100500), sender.sent[0].ChatID)
	assert.Equal(t, tgbotapi.ModeHTML, sender.sent[0].ParseMode)
	assert.True(t, sender.sent[0].DisableWebPagePreview)
	assert.Equal(t, "<b>Trending</b> now", sender.sent[0].Text)
	assert.Equal(t, "@channel", sender.sent[1].ChannelUsername)
}

func TestNotifier_SendSplitsLongMessages(t *testing.T) {
	sender := &fakeSender{}
	n := NewNotifier(sender, 0, 1, nil)

	para := strings.Repeat("word ", 500)
	text := para + "\n\n" + para

	require.NoError(t, n.Send(context.Background(), "1", text))

	texts := sender.texts()
	require.Greater(t, len(texts), 1)

	for _, part := range texts {
		assert.LessOrEqual(t, len([]rune(part)), MaxMessageSize)
	}
}

func TestNotifier_SendError(t *testing.T) {
	sender := &fakeSender{failAt: 1}
	n := NewNotifier(sender, 0, 1, nil)

	err := n.Send(context.Background(), "1", "hi")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrDelivery)
	assert.ErrorIs(t, err, errTelegramDown)
}

func TestNotifier_SendCanceledWhileThrottled(t *testing.T) {
	sender := &fakeSender{}
	n := NewNotifier(sender, 0.001, 1, nil)

	require.NoError(t, n.Send(context.Background(), "1", "first"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := n.Send(ctx, "1", "second")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrDelivery)
	assert.Len(t, sender.sent, 1)
}
