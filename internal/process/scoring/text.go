package scoring

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/lueurxax/trend-notifier/internal/core/domain"
)

// Text is the case-folded searchable text of an item.
type Text struct {
	title string
	body  string
}

// NewText folds title and body once so repeated lookups stay cheap.
// A Caser is stateful, so a fresh one is created per call.
func NewText(item domain.ContentItem) Text {
	fold := cases.Fold()
	title := fold.String(item.Title)

	fold.Reset()

	return Text{
		title: title,
		body:  fold.String(item.Body),
	}
}

// Contains reports whether term occurs in title or body, ignoring case.
// An empty term never matches.
func (t Text) Contains(term string) bool {
	term = Fold(strings.TrimSpace(term))
	if term == "" {
		return false
	}

	return strings.Contains(t.title, term) || strings.Contains(t.body, term)
}

// ContainsAny reports whether any of terms occurs in title or body.
func (t Text) ContainsAny(terms ...string) bool {
	for _, term := range terms {
		if t.Contains(term) {
			return true
		}
	}

	return false
}

// Fold returns the case-folded form of s.
func Fold(s string) string {
	return cases.Fold().String(s)
}
