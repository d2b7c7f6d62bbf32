package domain

import "time"

type Headline struct {
	Title       string
	Description string
	Link        string
}

type Sentiment struct {
	Score      float64    `json:"score"`
	Summary    string     `json:"summary"`
	Headlines  []Headline `json:"-"`
	Provenance Provenance `json:"-"`
	AsOf       time.Time  `json:"asOf"`
}

// Available is false for the zero value and for sentiment that was
// explicitly marked missing.
func (s Sentiment) Available() bool {
	return s.Provenance != "" && s.Provenance != ProvenanceMissing
}
