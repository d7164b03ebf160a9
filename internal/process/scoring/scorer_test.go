package scoring

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/lueurxax/trend-notifier/internal/core/domain"
)

const floatTolerance = 1e-9

var testNow = time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

func TestScore(t *testing.T) {
	tests := []struct {
		name string
		item domain.ContentItem
		want float64
	}{
		{
			name: "plain old item gets base score",
			item: domain.ContentItem{Title: "Weather report", CreatedAt: testNow.Add(-30 * 24 * time.Hour)},
			want: 0.5,
		},
		{
			name: "domain marker",
			item: domain.ContentItem{Title: "AI weekly", CreatedAt: testNow.Add(-30 * 24 * time.Hour)},
			want: 0.8,
		},
		{
			name: "recency within a day",
			item: domain.ContentItem{Title: "Weather report", CreatedAt: testNow.Add(-2 * time.Hour)},
			want: 0.7,
		},
		{
			name: "recency within three days",
			item: domain.ContentItem{Title: "Weather report", CreatedAt: testNow.Add(-48 * time.Hour)},
			want: 0.6,
		},
		{
			name: "recency within a week",
			item: domain.ContentItem{Title: "Weather report", CreatedAt: testNow.Add(-6 * 24 * time.Hour)},
			want: 0.55,
		},
		{
			name: "medium body",
			item: domain.ContentItem{Title: "Weather report", Body: strings.Repeat("x", 201), CreatedAt: testNow.Add(-30 * 24 * time.Hour)},
			want: 0.55,
		},
		{
			name: "long body",
			item: domain.ContentItem{Title: "Weather report", Body: strings.Repeat("x", 501), CreatedAt: testNow.Add(-30 * 24 * time.Hour)},
			want: 0.6,
		},
		{
			name: "keywords stack",
			item: domain.ContentItem{Title: "Startup gets funding of one million", CreatedAt: testNow.Add(-30 * 24 * time.Hour)},
			want: 0.8,
		},
		{
			name: "keyword in body counts",
			item: domain.ContentItem{Title: "Weather report", Body: "A BREAKTHROUGH in forecasting", CreatedAt: testNow.Add(-30 * 24 * time.Hour)},
			want: 0.8,
		},
		{
			name: "clamped to max",
			item: domain.ContentItem{Title: "OpenAI launches breakthrough GPT model", CreatedAt: testNow},
			want: MaxScore,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Score(tt.item, testNow), floatTolerance)
		})
	}
}

func TestScore_Bounds(t *testing.T) {
	titles := []string{
		"",
		"x",
		"AI GPT breakthrough revolutionary launches raises funding billion million first new",
		"robot vision",
		"Совершенно новый прорыв",
	}
	ages := []time.Duration{-time.Hour, 0, time.Hour, 50 * time.Hour, 100 * time.Hour, 400 * time.Hour}
	bodies := []string{"", strings.Repeat("a", 250), strings.Repeat("ai ", 400)}

	for _, title := range titles {
		for _, age := range ages {
			for _, body := range bodies {
				item := domain.ContentItem{Title: title, Body: body, CreatedAt: testNow.Add(-age)}
				score := Score(item, testNow)

				assert.GreaterOrEqual(t, score, MinScore)
				assert.LessOrEqual(t, score, MaxScore)
			}
		}
	}
}

func TestScore_KeywordMonotonicity(t *testing.T) {
	bases := []domain.ContentItem{
		{Title: "Quarterly report", CreatedAt: testNow.Add(-10 * 24 * time.Hour)},
		{Title: "AI report", Body: strings.Repeat("b", 300), CreatedAt: testNow},
		{Title: "Robot arm", CreatedAt: testNow.Add(-2 * 24 * time.Hour)},
	}

	for _, base := range bases {
		before := Score(base, testNow)

		for _, kw := range HighSignalKeywords {
			withKeyword := base
			withKeyword.Title = base.Title + " " + kw.Term

			assert.GreaterOrEqual(t, Score(withKeyword, testNow), before, "keyword %q lowered score of %q", kw.Term, base.Title)
		}
	}
}

func TestScore_FutureTimestampCountsAsFresh(t *testing.T) {
	item := domain.ContentItem{Title: "Weather report", CreatedAt: testNow.Add(time.Hour)}

	assert.InDelta(t, 0.7, Score(item, testNow), floatTolerance)
}

func TestEvaluate_EndToEndScenario(t *testing.T) {
	item := domain.ContentItem{
		ID:        "item-1",
		Title:     "OpenAI launches breakthrough GPT model",
		Source:    "techcrunch",
		CreatedAt: testNow,
	}

	scored := Evaluate(item, testNow)

	assert.Equal(t, item, scored.ContentItem)
	assert.InDelta(t, 1.0, scored.Score, floatTolerance)
	assert.Equal(t, domain.CategoryLanguageModels, scored.Category)
}

func TestPercent(t *testing.T) {
	assert.Equal(t, 100, Percent(1.0))
	assert.Equal(t, 10, Percent(0.1))
	assert.Equal(t, 86, Percent(0.856))
	assert.Equal(t, 70, Percent(0.7))
}

func TestCategorize(t *testing.T) {
	tests := []struct {
		name  string
		title string
		body  string
		want  domain.Category
	}{
		{name: "gpt beats robot", title: "GPT controls a robot", want: domain.CategoryLanguageModels},
		{name: "language model in body", title: "Research update", body: "A new large language model", want: domain.CategoryLanguageModels},
		{name: "vision", title: "Computer Vision benchmark", want: domain.CategoryComputerVision},
		{name: "image beats machine learning", title: "Image models and machine learning", want: domain.CategoryComputerVision},
		{name: "machine learning", title: "Machine Learning at scale", want: domain.CategoryMachineLearning},
		{name: "robot", title: "Warehouse ROBOTS", want: domain.CategoryRobotics},
		{name: "domain marker catch-all", title: "AI policy debate", want: domain.CategoryDomainTechnology},
		{name: "general", title: "Stock market update", want: domain.CategoryGeneral},
		{name: "empty", want: domain.CategoryGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := domain.ContentItem{Title: tt.title, Body: tt.body}

			assert.Equal(t, tt.want, Categorize(item))
			assert.Equal(t, Categorize(item), Categorize(item))
		})
	}
}

func TestText_Contains(t *testing.T) {
	text := NewText(domain.ContentItem{Title: "Straße News", Body: "Funding ROUND"})

	assert.True(t, text.Contains("funding"))
	assert.True(t, text.Contains("STRASSE"))
	assert.True(t, text.Contains("  news "))
	assert.False(t, text.Contains(""))
	assert.False(t, text.Contains("robot"))
	assert.True(t, text.ContainsAny("robot", "round"))
}
