package domain

import "time"

// Report is the fully computed state of one run. Rendering it must
// not need anything else.
type Report struct {
	GeneratedAt time.Time
	Score       MarketScore
	Indicators  MarketIndicators
	Sentiment   Sentiment

	// windowed history of the MOOD and SENTIMENT keys
	MoodHistory      []DatedValue
	SentimentHistory []DatedValue

	Positions []PortfolioPosition
	// nil when the brokerage could not be asked
	MarketOpen *bool
}
