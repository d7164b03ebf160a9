package db

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/lueurxax/trend-notifier/internal/core/domain"
	apperrors "github.com/lueurxax/trend-notifier/internal/core/errors"
)

var subscriberColumns = []string{
	"subscriber_id",
	"channel_handle",
	"enabled",
	"keywords",
	"categories",
	"min_score",
	"instant_enabled",
	"daily_enabled",
	"weekly_enabled",
}

// modeColumn maps a notification mode to its opt-in flag column.
func modeColumn(mode domain.NotificationMode) (string, error) {
	switch mode {
	case domain.ModeInstant:
		return "instant_enabled", nil
	case domain.ModeDaily:
		return "daily_enabled", nil
	case domain.ModeWeekly:
		return "weekly_enabled", nil
	default:
		return "", fmt.Errorf("%w: unknown notification mode %q", apperrors.ErrInvalidInput, mode)
	}
}

func enabledSubscribersQuery(mode domain.NotificationMode) (sq.SelectBuilder, error) {
	column, err := modeColumn(mode)
	if err != nil {
		return sq.SelectBuilder{}, err
	}

	return psql.Select(subscriberColumns...).
		From(tableSubscribers).
		Where(sq.Eq{"enabled": true, column: true}).
		OrderBy("subscriber_id"), nil
}

// ListEnabledSubscribers returns enabled subscribers that opted into mode.
func (db *DB) ListEnabledSubscribers(ctx context.Context, mode domain.NotificationMode) ([]domain.SubscriberPreference, error) {
	builder, err := enabledSubscribersQuery(mode)
	if err != nil {
		return nil, err
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build subscribers query: %w", err)
	}

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query subscribers: %w", err)
	}
	defer rows.Close()

	var subs []domain.SubscriberPreference

	for rows.Next() {
		var (
			pref       domain.SubscriberPreference
			categories []string
			minScore   pgtype.Float8
		)

		if err := rows.Scan(
			&pref.SubscriberID,
			&pref.ChannelHandle,
			&pref.Enabled,
			&pref.Keywords,
			&categories,
			&minScore,
			&pref.Modes.Instant,
			&pref.Modes.Daily,
			&pref.Modes.Weekly,
		); err != nil {
			return nil, fmt.Errorf("scan subscriber row: %w", err)
		}

		pref.MinScore = fromFloat8(minScore)
		pref.Categories = toCategories(categories)

		if dropped := len(categories) - len(pref.Categories); dropped > 0 {
			db.Logger.Warn().
				Str("subscriber_id", pref.SubscriberID).
				Strs("categories", categories).
				Msg("subscriber has unknown categories")

			if len(pref.Categories) == 0 {
				continue
			}
		}

		subs = append(subs, pref)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subscriber rows: %w", err)
	}

	return subs, nil
}

// SaveSubscriber upserts a subscriber preference.
func (db *DB) SaveSubscriber(ctx context.Context, pref domain.SubscriberPreference) error {
	query, args, err := saveSubscriberQuery(pref).ToSql()
	if err != nil {
		return fmt.Errorf("build save subscriber query: %w", err)
	}

	if _, err := db.Pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("save subscriber %s: %w", pref.SubscriberID, err)
	}

	return nil
}

// toCategories keeps the values that belong to the taxonomy.
func toCategories(values []string) []domain.Category {
	if len(values) == 0 {
		return nil
	}

	out := make([]domain.Category, 0, len(values))

	for _, v := range values {
		if c := domain.Category(v); c.Valid() {
			out = append(out, c)
		}
	}

	return out
}

func fromCategories(categories []domain.Category) []string {
	out := make([]string, 0, len(categories))

	for _, c := range categories {
		out = append(out, string(c))
	}

	return out
}

func saveSubscriberQuery(pref domain.SubscriberPreference) sq.InsertBuilder {
	keywords := pref.Keywords
	if keywords == nil {
		keywords = []string{}
	}

	return psql.Insert(tableSubscribers).
		Columns(subscriberColumns...).
		Values(
			pref.SubscriberID,
			pref.ChannelHandle,
			pref.Enabled,
			keywords,
			fromCategories(pref.Categories),
			pref.MinScore,
			pref.Modes.Instant,
			pref.Modes.Daily,
			pref.Modes.Weekly,
		).
		Suffix(`ON CONFLICT (subscriber_id) DO UPDATE SET
			channel_handle = EXCLUDED.channel_handle,
			enabled = EXCLUDED.enabled,
			keywords = EXCLUDED.keywords,
			categories = EXCLUDED.categories,
			min_score = EXCLUDED.min_score,
			instant_enabled = EXCLUDED.instant_enabled,
			daily_enabled = EXCLUDED.daily_enabled,
			weekly_enabled = EXCLUDED.weekly_enabled,
			updated_at = now()`)
}
