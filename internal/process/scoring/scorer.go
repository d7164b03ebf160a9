// Package scoring computes the heuristic relevance score and category of
// content items. Everything here is pure: the same item and reference time
// always produce the same result.
package scoring

import (
	"time"
	"unicode/utf8"

	"github.com/lueurxax/trend-notifier/internal/core/domain"
)

const (
	// BaseScore is the starting score of every item.
	BaseScore = 0.5
	// MinScore and MaxScore bound the final score.
	MinScore = 0.1
	MaxScore = 1.0

	// DomainMarker is the term that makes an item domain-relevant.
	DomainMarker = "ai"
	domainBonus  = 0.3

	hoursPerDay = 24

	longBodyChars   = 500
	mediumBodyChars = 200
	longBodyBonus   = 0.1
	mediumBodyBonus = 0.05

	percentScale   = 100
	roundingOffset = 0.5
)

// Keyword is a high-signal term and the bonus it adds when present.
type Keyword struct {
	Term  string
	Bonus float64
}

// HighSignalKeywords stack: every matched term adds its own bonus.
var HighSignalKeywords = []Keyword{
	{Term: "gpt", Bonus: 0.2},
	{Term: "breakthrough", Bonus: 0.3},
	{Term: "revolutionary", Bonus: 0.25},
	{Term: "launches", Bonus: 0.15},
	{Term: "raises", Bonus: 0.2},
	{Term: "funding", Bonus: 0.15},
	{Term: "billion", Bonus: 0.25},
	{Term: "million", Bonus: 0.15},
	{Term: "first", Bonus: 0.1},
	{Term: "new", Bonus: 0.05},
}

type recencyBracket struct {
	maxAge time.Duration
	bonus  float64
}

// Ordered from the freshest bracket; only the first matching one applies.
var recencyBrackets = []recencyBracket{
	{maxAge: 1 * hoursPerDay * time.Hour, bonus: 0.2},
	{maxAge: 3 * hoursPerDay * time.Hour, bonus: 0.1},
	{maxAge: 7 * hoursPerDay * time.Hour, bonus: 0.05},
}

// Score returns the relevance of item relative to now, clamped to [MinScore, MaxScore].
func Score(item domain.ContentItem, now time.Time) float64 {
	return scoreText(item, NewText(item), now)
}

func scoreText(item domain.ContentItem, text Text, now time.Time) float64 {
	score := BaseScore

	if text.Contains(DomainMarker) {
		score += domainBonus
	}

	for _, kw := range HighSignalKeywords {
		if text.Contains(kw.Term) {
			score += kw.Bonus
		}
	}

	score += recencyBonus(now.Sub(item.CreatedAt))
	score += bodyLengthBonus(item.Body)

	return clamp(score)
}

func recencyBonus(age time.Duration) float64 {
	// Items stamped slightly in the future count as fresh.
	if age < 0 {
		age = 0
	}

	for _, b := range recencyBrackets {
		if age <= b.maxAge {
			return b.bonus
		}
	}

	return 0
}

func bodyLengthBonus(body string) float64 {
	n := utf8.RuneCountInString(body)

	switch {
	case n > longBodyChars:
		return longBodyBonus
	case n > mediumBodyChars:
		return mediumBodyBonus
	default:
		return 0
	}
}

func clamp(score float64) float64 {
	if score < MinScore {
		return MinScore
	}

	if score > MaxScore {
		return MaxScore
	}

	return score
}

// Evaluate scores and categorizes item in one pass over its folded text.
func Evaluate(item domain.ContentItem, now time.Time) domain.ScoredItem {
	text := NewText(item)

	return domain.ScoredItem{
		ContentItem: item,
		Score:       scoreText(item, text, now),
		Category:    categorizeText(text),
	}
}

// Percent renders a score as a rounded integer percentage.
func Percent(score float64) int {
	return int(score*percentScale + roundingOffset)
}
