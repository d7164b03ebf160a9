package db

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/lueurxax/trend-notifier/internal/core/domain"
)

var contentItemColumns = []string{"id", "title", "body", "source", "created_at"}

// ListItemsSince returns items created at or after since, newest first.
func (db *DB) ListItemsSince(ctx context.Context, since time.Time) ([]domain.ContentItem, error) {
	query, args, err := itemsSinceQuery(since).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build items since query: %w", err)
	}

	return db.queryItems(ctx, query, args)
}

// ListItemsInWindow returns items with from <= created_at < to, newest first.
func (db *DB) ListItemsInWindow(ctx context.Context, from, to time.Time) ([]domain.ContentItem, error) {
	query, args, err := itemsInWindowQuery(from, to).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build items window query: %w", err)
	}

	return db.queryItems(ctx, query, args)
}

func itemsSinceQuery(since time.Time) sq.SelectBuilder {
	return psql.Select(contentItemColumns...).
		From(tableContentItems).
		Where(sq.GtOrEq{"created_at": since}).
		OrderBy("created_at DESC", "id")
}

func itemsInWindowQuery(from, to time.Time) sq.SelectBuilder {
	return psql.Select(contentItemColumns...).
		From(tableContentItems).
		Where(sq.And{
			sq.GtOrEq{"created_at": from},
			sq.Lt{"created_at": to},
		}).
		OrderBy("created_at DESC", "id")
}

func (db *DB) queryItems(ctx context.Context, query string, args []interface{}) ([]domain.ContentItem, error) {
	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query content items: %w", err)
	}
	defer rows.Close()

	var items []domain.ContentItem

	for rows.Next() {
		var (
			item      domain.ContentItem
			body      pgtype.Text
			source    pgtype.Text
			createdAt pgtype.Timestamptz
		)

		if err := rows.Scan(&item.ID, &item.Title, &body, &source, &createdAt); err != nil {
			return nil, fmt.Errorf("scan content item row: %w", err)
		}

		item.Body = fromText(body)
		item.Source = fromText(source)
		item.CreatedAt = fromTimestamptz(createdAt)

		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate content item rows: %w", err)
	}

	return items, nil
}

// SaveContentItem upserts an item. Used by ingestion tooling and seeding.
func (db *DB) SaveContentItem(ctx context.Context, item domain.ContentItem) error {
	query, args, err := saveContentItemQuery(item).ToSql()
	if err != nil {
		return fmt.Errorf("build save content item query: %w", err)
	}

	if _, err := db.Pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("save content item %s: %w", item.ID, err)
	}

	return nil
}

func saveContentItemQuery(item domain.ContentItem) sq.InsertBuilder {
	return psql.Insert(tableContentItems).
		Columns(contentItemColumns...).
		Values(item.ID, SanitizeUTF8(item.Title), toText(item.Body), toText(item.Source), toTimestamptz(item.CreatedAt)).
		Suffix("ON CONFLICT (id) DO UPDATE SET title = EXCLUDED.title, body = EXCLUDED.body, source = EXCLUDED.source")
}
