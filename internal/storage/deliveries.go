package db

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/lueurxax/trend-notifier/internal/core/domain"
)

// AppendDeliveryRecord inserts rec. A missing ID or SentAt is filled in and
// written back to rec.
func (db *DB) AppendDeliveryRecord(ctx context.Context, rec *domain.DeliveryRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}

	if rec.SentAt.IsZero() {
		rec.SentAt = time.Now().UTC()
	}

	query, args, err := appendDeliveryQuery(rec).ToSql()
	if err != nil {
		return fmt.Errorf("build append delivery query: %w", err)
	}

	if _, err := db.Pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("append delivery record: %w", err)
	}

	return nil
}

func appendDeliveryQuery(rec *domain.DeliveryRecord) sq.InsertBuilder {
	hasItem := rec.ItemID != ""

	return psql.Insert(tableDeliveries).
		Columns(
			"id", "subscriber_id", "item_id", "mode", "channel", "message",
			"status", "error", "sent_at", "score", "category",
		).
		Values(
			rec.ID,
			rec.SubscriberID,
			toText(rec.ItemID),
			string(rec.Mode),
			rec.Channel,
			SanitizeUTF8(rec.Message),
			string(rec.Status),
			toText(rec.Error),
			toTimestamptz(rec.SentAt),
			toFloat8(rec.Metadata.Score, hasItem),
			toText(string(rec.Metadata.Category)),
		)
}

// ExistsSentWithin reports whether a sent instant delivery of itemID to
// subscriberID exists with sent_at inside the trailing window.
func (db *DB) ExistsSentWithin(ctx context.Context, subscriberID, itemID string, window time.Duration) (bool, error) {
	query, args, err := existsSentWithinQuery(subscriberID, itemID, window).ToSql()
	if err != nil {
		return false, fmt.Errorf("build dedup query: %w", err)
	}

	var exists bool
	if err := db.Pool.QueryRow(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("query dedup window: %w", err)
	}

	return exists, nil
}

func existsSentWithinQuery(subscriberID, itemID string, window time.Duration) sq.SelectBuilder {
	inner := sq.Select("1").
		From(tableDeliveries).
		Where(sq.Eq{
			"subscriber_id": subscriberID,
			"item_id":       itemID,
			"mode":          string(domain.ModeInstant),
			"status":        string(domain.DeliveryStatusSent),
		}).
		Where(sq.Expr("sent_at > now() - make_interval(secs => ?)", window.Seconds()))

	return psql.Select().Column(sq.Expr("EXISTS(?)", inner))
}

// PruneDeliveryRecords deletes records older than retention and returns the
// number of rows removed.
func (db *DB) PruneDeliveryRecords(ctx context.Context, retention time.Duration) (int64, error) {
	query, args, err := psql.Delete(tableDeliveries).
		Where(sq.Expr("sent_at < now() - make_interval(secs => ?)", retention.Seconds())).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build prune query: %w", err)
	}

	tag, err := db.Pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("prune delivery records: %w", err)
	}

	return tag.RowsAffected(), nil
}

// DeliveryStats summarizes delivery outcomes since a point in time.
type DeliveryStats struct {
	Sent   int
	Failed int
}

// GetDeliveryStats counts delivery records by status since the given time.
func (db *DB) GetDeliveryStats(ctx context.Context, since time.Time) (DeliveryStats, error) {
	query, args, err := psql.Select("status", "COUNT(*)::int").
		From(tableDeliveries).
		Where(sq.GtOrEq{"sent_at": since}).
		GroupBy("status").
		ToSql()
	if err != nil {
		return DeliveryStats{}, fmt.Errorf("build delivery stats query: %w", err)
	}

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return DeliveryStats{}, fmt.Errorf("query delivery stats: %w", err)
	}
	defer rows.Close()

	var stats DeliveryStats

	for rows.Next() {
		var (
			status string
			count  int
		)

		if err := rows.Scan(&status, &count); err != nil {
			return DeliveryStats{}, fmt.Errorf("scan delivery stats row: %w", err)
		}

		switch domain.DeliveryStatus(status) {
		case domain.DeliveryStatusSent:
			stats.Sent = count
		case domain.DeliveryStatusFailed:
			stats.Failed = count
		}
	}

	if err := rows.Err(); err != nil {
		return DeliveryStats{}, fmt.Errorf("iterate delivery stats rows: %w", err)
	}

	return stats, nil
}
