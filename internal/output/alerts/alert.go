// Package alerts renders instant alerts and weekly digests as Telegram HTML.
package alerts

import (
	"fmt"
	"html"
	"strings"
	"unicode/utf8"

	"github.com/lueurxax/trend-notifier/internal/core/domain"
	"github.com/lueurxax/trend-notifier/internal/process/scoring"
)

// FormatInstantAlert renders the per-item alert message.
func FormatInstantAlert(item domain.ScoredItem) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s <b>%s</b>\n\n", item.Category.Icon(), html.EscapeString(strings.TrimSpace(item.Title)))
	fmt.Fprintf(&sb, "📂 %s • 📈 %d%%\n", html.EscapeString(item.Category.DisplayName()), scoring.Percent(item.Score))
	fmt.Fprintf(&sb, "🔗 %s\n", html.EscapeString(sourceLabel(item.Source)))

	if excerpt := Excerpt(item.Body, ExcerptRunes); excerpt != "" {
		fmt.Fprintf(&sb, "\n<i>%s</i>\n", html.EscapeString(excerpt))
	}

	fmt.Fprintf(&sb, "\n%s", item.Category.Hashtag())

	return sb.String()
}

// Excerpt returns the first limit runes of body with whitespace collapsed,
// adding an ellipsis when the text was cut.
func Excerpt(body string, limit int) string {
	text := strings.Join(strings.Fields(body), " ")
	if text == "" || limit <= 0 {
		return ""
	}

	if utf8.RuneCountInString(text) <= limit {
		return text
	}

	runes := []rune(text)

	return strings.TrimSpace(string(runes[:limit])) + ellipsis
}

func sourceLabel(source string) string {
	source = strings.TrimSpace(source)
	if source == "" {
		return DefaultSourceLabel
	}

	return source
}
