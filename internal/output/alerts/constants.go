package alerts

// Formatting limits.
const (
	// ExcerptRunes is the maximum body excerpt length in an instant alert.
	ExcerptRunes = 150
	// TopTrendsLimit is how many items the weekly digest lists.
	TopTrendsLimit = 3

	ellipsis = "…"
)

// Display constants.
const (
	DefaultSourceLabel = "unknown source"
	DateFormatDay      = "Jan 2"
	separatorLine      = "━━━━━━━━━━━━━━━━━━\n"
)
