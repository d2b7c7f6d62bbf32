package domain

type ScoreFactor struct {
	Name        string
	RawValue    float64
	SubScore    float64
	Weight      float64
	Provenance  Provenance
	Explanation string
}

type VerdictLabel string

const (
	VerdictBullish VerdictLabel = "Bullish"
	VerdictNeutral VerdictLabel = "Neutral"
	VerdictBearish VerdictLabel = "Bearish"
)

type MarketVerdict struct {
	ProbabilityUp   int
	ProbabilityDown int
	Label           VerdictLabel
	Color           string
}

type MarketScore struct {
	// Factors only holds factors that contributed to Score
	Factors     []ScoreFactor
	Score       float64
	TotalWeight float64
	Verdict     MarketVerdict
}
