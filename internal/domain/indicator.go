package domain

import "time"

// DatedValue is a single observation of an indicator. Date is
// formatted as time.DateOnly ("YYYY-MM-DD").
type DatedValue struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// Provenance tracks where an indicator value came from. Scoring
// only ignores ProvenanceMissing, so "present but neutral" and
// "absent" stay distinguishable.
type Provenance string

const (
	ProvenanceLive     Provenance = "live"
	ProvenanceFallback Provenance = "fallback"
	ProvenanceStale    Provenance = "stale"
	ProvenanceDefault  Provenance = "default"
	ProvenanceMissing  Provenance = "missing"
)

// Well-known indicator names, also used as history store keys.
const (
	IndicatorVolatility     = "VIX"
	IndicatorLongVolatility = "VIX3M"
	IndicatorTailRisk       = "SKEW"
	IndicatorBondVolatility = "MOVE"
	IndicatorPutCall        = "PCR"
	IndicatorSentiment      = "SENTIMENT"
	IndicatorMood           = "MOOD"
)

type Indicator struct {
	Name       string
	Source     string
	Current    float64
	Provenance Provenance

	// Series is whatever the provider returned for this run, ascending
	// by date. It can be empty even when Current is set.
	Series []DatedValue

	// History is the windowed view of the persisted history and
	// Sparkline is its fixed-length suffix. Both are filled in after
	// today's value has been appended to the store.
	History   []DatedValue
	Sparkline []DatedValue

	Err error
}

func MissingIndicator(name string, err error) Indicator {
	return Indicator{
		Name:       name,
		Provenance: ProvenanceMissing,
		Series:     []DatedValue{},
		History:    []DatedValue{},
		Sparkline:  []DatedValue{},
		Err:        err,
	}
}

func (i Indicator) Available() bool {
	return i.Provenance != "" && i.Provenance != ProvenanceMissing
}

// Fresh reports whether the value was fetched during this run, as
// opposed to being carried forward or defaulted.
func (i Indicator) Fresh() bool {
	return i.Provenance == ProvenanceLive || i.Provenance == ProvenanceFallback
}

// Closes returns the closes momentum is computed from. The provider
// series is used when it covers want points; otherwise whichever of
// the series and the stored history is longer. An available value with
// neither still counts as a single close.
func (i Indicator) Closes(want int) []float64 {
	source := i.Series
	if len(source) < want && len(i.History) > len(source) {
		source = i.History
	}
	out := make([]float64, 0, len(source))
	for _, v := range source {
		out = append(out, v.Value)
	}
	if len(out) == 0 && i.Available() {
		out = append(out, i.Current)
	}
	return out
}

// Tail returns the last n entries of series, or all of them if
// there are fewer than n. The result is never nil.
func Tail(series []DatedValue, n int) []DatedValue {
	if n <= 0 || len(series) == 0 {
		return []DatedValue{}
	}
	if len(series) <= n {
		out := make([]DatedValue, len(series))
		copy(out, series)
		return out
	}
	out := make([]DatedValue, n)
	copy(out, series[len(series)-n:])
	return out
}

func DateKey(t time.Time) string {
	return t.Format(time.DateOnly)
}

// MarketIndicators is everything the fetchers produce in one run.
type MarketIndicators struct {
	Volatility     Indicator
	LongVolatility Indicator
	TailRisk       Indicator
	BondVolatility Indicator
	PutCall        Indicator
	Indices        []Indicator
}

// All returns the indicators in display order. Indices come last.
func (m MarketIndicators) All() []Indicator {
	out := []Indicator{
		m.Volatility,
		m.LongVolatility,
		m.TailRisk,
		m.BondVolatility,
		m.PutCall,
	}
	return append(out, m.Indices...)
}
