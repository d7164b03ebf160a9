package scoring

import "github.com/lueurxax/trend-notifier/internal/core/domain"

type categoryRule struct {
	category domain.Category
	terms    []string
}

// categoryRules are evaluated top to bottom and the first match wins.
// The order is part of the contract: "gpt robot" is a language model story.
var categoryRules = []categoryRule{
	{category: domain.CategoryLanguageModels, terms: []string{"gpt", "llm", "language model", "chatgpt", "claude"}},
	{category: domain.CategoryComputerVision, terms: []string{"vision", "image"}},
	{category: domain.CategoryMachineLearning, terms: []string{"machine learning"}},
	{category: domain.CategoryRobotics, terms: []string{"robot"}},
	{category: domain.CategoryDomainTechnology, terms: []string{DomainMarker}},
}

// Categorize assigns item to exactly one category.
func Categorize(item domain.ContentItem) domain.Category {
	return categorizeText(NewText(item))
}

func categorizeText(text Text) domain.Category {
	for _, rule := range categoryRules {
		if text.ContainsAny(rule.terms...) {
			return rule.category
		}
	}

	return domain.CategoryGeneral
}
