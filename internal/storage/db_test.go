package db

import (
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lueurxax/trend-notifier/internal/core/domain"
	apperrors "github.com/lueurxax/trend-notifier/internal/core/errors"
)

var testTime = time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

func TestItemsSinceQuery(t *testing.T) {
	query, args, err := itemsSinceQuery(testTime).ToSql()
	require.NoError(t, err)

	assert.Equal(t, "SELECT id, title, body, source, created_at FROM content_items WHERE created_at >= $1 ORDER BY created_at DESC, id", query)
	assert.Equal(t, []interface{}{testTime}, args)
}

func TestItemsInWindowQuery(t *testing.T) {
	from := testTime.Add(-7 * 24 * time.Hour)

	query, args, err := itemsInWindowQuery(from, testTime).ToSql()
	require.NoError(t, err)

	assert.Equal(t, "SELECT id, title, body, source, created_at FROM content_items WHERE (created_at >= $1 AND created_at < $2) ORDER BY created_at DESC, id", query)
	assert.Equal(t, []interface{}{from, testTime}, args)
}

func TestEnabledSubscribersQuery(t *testing.T) {
	builder, err := enabledSubscribersQuery(domain.ModeWeekly)
	require.NoError(t, err)

	query, args, err := builder.ToSql()
	require.NoError(t, err)

	assert.Contains(t, query, "FROM subscriber_preferences WHERE")
	assert.Contains(t, query, "enabled = $1")
	assert.Contains(t, query, "weekly_enabled = $2")
	assert.Equal(t, []interface{}{true, true}, args)
}

func TestModeColumn(t *testing.T) {
	col, err := modeColumn(domain.ModeInstant)
	require.NoError(t, err)
	assert.Equal(t, "instant_enabled", col)

	_, err = modeColumn(domain.NotificationMode("hourly"))
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestExistsSentWithinQuery(t *testing.T) {
	query, args, err := existsSentWithinQuery("sub-1", "item-1", time.Hour).ToSql()
	require.NoError(t, err)

	assert.Contains(t, query, "SELECT EXISTS(SELECT 1 FROM delivery_records WHERE")
	assert.Contains(t, query, "make_interval(secs => $5)")
	assert.NotContains(t, query, "?")
	require.Len(t, args, 5)
	assert.Contains(t, args, "sub-1")
	assert.Contains(t, args, "item-1")
	assert.Contains(t, args, string(domain.ModeInstant))
	assert.Contains(t, args, string(domain.DeliveryStatusSent))
	assert.InDelta(t, 3600.0, args[4], 1e-9)
}

func TestAppendDeliveryQuery_DigestRecordHasNoItem(t *testing.T) {
	rec := &domain.DeliveryRecord{
		ID:           "rec-1",
		SubscriberID: "sub-1",
		Mode:         domain.ModeWeekly,
		Channel:      domain.DefaultChannel,
		Message:      "digest",
		Status:       domain.DeliveryStatusSent,
		SentAt:       testTime,
	}

	query, args, err := appendDeliveryQuery(rec).ToSql()
	require.NoError(t, err)

	assert.Contains(t, query, "INSERT INTO delivery_records")
	require.Len(t, args, 11)
	assert.False(t, toText(rec.ItemID).Valid)
	assert.Equal(t, toText(""), args[2])
	assert.Equal(t, toFloat8(0, false), args[9])
}

func TestTaskStateKey(t *testing.T) {
	assert.Equal(t, "task:weekly_digest", taskStateKey("weekly_digest"))
}

func TestSanitizeUTF8(t *testing.T) {
	assert.Equal(t, "ok", SanitizeUTF8("ok"))
	assert.Equal(t, "ab", SanitizeUTF8("a\xffb"))
	assert.Equal(t, "", SanitizeUTF8(""))
}

func TestCategoryConversion(t *testing.T) {
	assert.Nil(t, toCategories(nil))
	assert.Equal(t, []string{}, fromCategories(nil))

	cats := []domain.Category{domain.CategoryRobotics, domain.CategoryGeneral}
	assert.Equal(t, cats, toCategories(fromCategories(cats)))
}

func TestToCategories_DropsUnknown(t *testing.T) {
	assert.Equal(t,
		[]domain.Category{domain.CategoryComputerVision},
		toCategories([]string{"quantum", "computer_vision", "Robotics"}),
	)
	assert.Empty(t, toCategories([]string{"quantum"}))
}

func TestTimestamptzHelpers(t *testing.T) {
	assert.False(t, toTimestamptz(time.Time{}).Valid)
	assert.True(t, fromTimestamptz(toTimestamptz(time.Time{})).IsZero())
	assert.Equal(t, testTime, fromTimestamptz(toTimestamptz(testTime)))
}

func TestSaveContentItemQuery(t *testing.T) {
	item := domain.ContentItem{ID: "item-1", Title: "Robots", Source: "hn", CreatedAt: testTime}

	query, args, err := saveContentItemQuery(item).ToSql()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(query, "INSERT INTO content_items (id,title,body,source,created_at) VALUES ($1,$2,$3,$4,$5)"))
	assert.Contains(t, query, "ON CONFLICT (id) DO UPDATE")
	require.Len(t, args, 5)
	assert.Equal(t, "item-1", args[0])
	assert.Equal(t, pgtype.Text{}, args[2])
	assert.Equal(t, pgtype.Text{String: "hn", Valid: true}, args[3])
}

func TestSaveSubscriberQuery(t *testing.T) {
	pref := domain.SubscriberPreference{
		SubscriberID:  "sub-1",
		ChannelHandle: "@trends",
		Enabled:       true,
		Categories:    []domain.Category{domain.CategoryRobotics},
		MinScore:      0.6,
		Modes:         domain.NotificationModes{Weekly: true},
	}

	query, args, err := saveSubscriberQuery(pref).ToSql()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(query, "INSERT INTO subscriber_preferences"))
	assert.Contains(t, query, "ON CONFLICT (subscriber_id) DO UPDATE")
	require.Len(t, args, 9)
	assert.Equal(t, []string{}, args[3])
	assert.Equal(t, []string{"robotics"}, args[4])
	assert.Equal(t, true, args[8])
}
