package alerts

import (
	"fmt"
	"html"
	"sort"
	"strings"
	"time"

	"github.com/lueurxax/trend-notifier/internal/core/domain"
	"github.com/lueurxax/trend-notifier/internal/process/scoring"
)

// WeeklyDigest is the aggregate sent to weekly subscribers.
type WeeklyDigest struct {
	From         time.Time
	To           time.Time
	TotalItems   int
	AverageScore float64
	TopCategory  domain.Category
	TopTrends    []domain.ScoredItem
}

// Empty reports whether the digest window had no items.
func (d WeeklyDigest) Empty() bool {
	return d.TotalItems == 0
}

// Aggregate builds a digest from scored items of the window [from, to).
// Ties on category frequency go to the earlier taxonomy entry and ties on
// score go to the newer item, so the output is deterministic.
func Aggregate(items []domain.ScoredItem, from, to time.Time) WeeklyDigest {
	d := WeeklyDigest{From: from, To: to, TotalItems: len(items)}
	if len(items) == 0 {
		return d
	}

	var total float64

	counts := make(map[domain.Category]int)

	for _, item := range items {
		total += item.Score
		counts[item.Category]++
	}

	d.AverageScore = total / float64(len(items))
	d.TopCategory = mostFrequent(counts)
	d.TopTrends = topByScore(items, TopTrendsLimit)

	return d
}

func mostFrequent(counts map[domain.Category]int) domain.Category {
	best := domain.CategoryGeneral
	bestCount := 0

	for _, c := range domain.AllCategories() {
		if counts[c] > bestCount {
			best = c
			bestCount = counts[c]
		}
	}

	return best
}

func topByScore(items []domain.ScoredItem, limit int) []domain.ScoredItem {
	sorted := make([]domain.ScoredItem, len(items))
	copy(sorted, items)

	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Score != sorted[j].Score {
			return sorted[i].Score > sorted[j].Score
		}

		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})

	if len(sorted) > limit {
		sorted = sorted[:limit]
	}

	return sorted
}

// FormatWeeklyDigest renders the digest message.
func FormatWeeklyDigest(d WeeklyDigest) string {
	var sb strings.Builder

	sb.WriteString(separatorLine)
	fmt.Fprintf(&sb, "📊 <b>Weekly AI Trends</b> • %s - %s\n", d.From.Format(DateFormatDay), d.To.Format(DateFormatDay))
	sb.WriteString(separatorLine)

	fmt.Fprintf(&sb, "\n📰 Items: <b>%d</b>\n", d.TotalItems)
	fmt.Fprintf(&sb, "📈 Average score: <b>%d%%</b>\n", scoring.Percent(d.AverageScore))
	fmt.Fprintf(&sb, "%s Top category: <b>%s</b>\n", d.TopCategory.Icon(), html.EscapeString(d.TopCategory.DisplayName()))

	if len(d.TopTrends) > 0 {
		sb.WriteString("\n🔥 <b>Top trends</b>\n")

		for i, item := range d.TopTrends {
			fmt.Fprintf(&sb, "%d. %s (%d%%)\n", i+1, html.EscapeString(strings.TrimSpace(item.Title)), scoring.Percent(item.Score))
		}
	}

	return sb.String()
}
