// Package matching decides whether a scored item is eligible for a subscriber.
package matching

import (
	"github.com/lueurxax/trend-notifier/internal/core/domain"
	"github.com/lueurxax/trend-notifier/internal/process/scoring"
)

// Matches reports whether pref wants to hear about scored.
//
// A disabled preference never matches. Otherwise the score must reach
// MinScore, at least one keyword must occur in title or body, and the
// category must be listed. Empty keyword or category sets do not restrict.
func Matches(scored domain.ScoredItem, pref domain.SubscriberPreference) bool {
	if !pref.Enabled {
		return false
	}

	if scored.Score < pref.MinScore {
		return false
	}

	if !matchesKeywords(scored.ContentItem, pref.Keywords) {
		return false
	}

	return matchesCategories(scored.Category, pref.Categories)
}

func matchesKeywords(item domain.ContentItem, keywords []string) bool {
	if len(keywords) == 0 {
		return true
	}

	return scoring.NewText(item).ContainsAny(keywords...)
}

func matchesCategories(category domain.Category, allowed []domain.Category) bool {
	if len(allowed) == 0 {
		return true
	}

	for _, c := range allowed {
		if c == category {
			return true
		}
	}

	return false
}
