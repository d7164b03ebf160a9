package domain

// Category is a label from the closed trend taxonomy.
type Category string

// Trend categories.
const (
	CategoryLanguageModels   Category = "language_models"
	CategoryComputerVision   Category = "computer_vision"
	CategoryMachineLearning  Category = "machine_learning"
	CategoryRobotics         Category = "robotics"
	CategoryDomainTechnology Category = "ai_technology"
	CategoryGeneral          Category = "general"
)

type categoryInfo struct {
	name    string
	icon    string
	hashtag string
}

var categories = map[Category]categoryInfo{
	CategoryLanguageModels:   {name: "Language Models", icon: "🧠", hashtag: "#LLM"},
	CategoryComputerVision:   {name: "Computer Vision", icon: "👁", hashtag: "#ComputerVision"},
	CategoryMachineLearning:  {name: "Machine Learning", icon: "📊", hashtag: "#MachineLearning"},
	CategoryRobotics:         {name: "Robotics", icon: "🤖", hashtag: "#Robotics"},
	CategoryDomainTechnology: {name: "AI Technology", icon: "⚡", hashtag: "#AI"},
	CategoryGeneral:          {name: "General", icon: "📰", hashtag: "#TechNews"},
}

// AllCategories lists the taxonomy in rule order.
func AllCategories() []Category {
	return []Category{
		CategoryLanguageModels,
		CategoryComputerVision,
		CategoryMachineLearning,
		CategoryRobotics,
		CategoryDomainTechnology,
		CategoryGeneral,
	}
}

// Valid reports whether c belongs to the taxonomy.
func (c Category) Valid() bool {
	_, ok := categories[c]
	return ok
}

// DisplayName returns the human readable category name.
func (c Category) DisplayName() string {
	if info, ok := categories[c]; ok {
		return info.name
	}

	return string(c)
}

// Icon returns the emoji used in alerts.
func (c Category) Icon() string {
	if info, ok := categories[c]; ok {
		return info.icon
	}

	return "•"
}

// Hashtag returns the hashtag appended to alerts.
func (c Category) Hashtag() string {
	if info, ok := categories[c]; ok {
		return info.hashtag
	}

	return "#TechNews"
}
