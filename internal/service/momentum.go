package service

import (
	"fmt"

	"github.com/montanaflynn/stats"
)

const (
	trendAboveAndUp     = 100.0
	trendAboveAndDown   = 60.0
	trendBelowAndUp     = 25.0
	trendBelowAndDown   = 0.0
	trendNotEnoughData  = 50.0
	momentumWeight      = 0.30
	momentumFactorLabel = "Index momentum"
)

// IndexTrend is the momentum reading for a single index.
type IndexTrend struct {
	Symbol    string
	LastClose float64
	Sma       float64
	Return    float64
	Band      float64
	// Partial means there were fewer closes than the SMA window, so
	// Band is the neutral default
	Partial bool
}

// indexTrend bands the last close against its trailing SMA and the
// return over the last horizon sessions. ok is false when there are
// no closes at all, in which case the index is left out of the
// momentum average.
func indexTrend(symbol string, closes []float64, smaWindow, horizon int) (trend IndexTrend, ok bool) {
	if len(closes) == 0 {
		return IndexTrend{}, false
	}

	trend = IndexTrend{
		Symbol:    symbol,
		LastClose: closes[len(closes)-1],
	}
	if len(closes) < smaWindow || len(closes) <= horizon {
		trend.Band = trendNotEnoughData
		trend.Partial = true
		return trend, true
	}

	sma, err := stats.Mean(stats.Float64Data(closes[len(closes)-smaWindow:]))
	if err != nil {
		trend.Band = trendNotEnoughData
		trend.Partial = true
		return trend, true
	}
	trend.Sma = sma

	base := closes[len(closes)-1-horizon]
	if base != 0 {
		trend.Return = trend.LastClose/base - 1
	}

	above := trend.LastClose > sma
	up := trend.Return > 0
	switch {
	case above && up:
		trend.Band = trendAboveAndUp
	case above:
		trend.Band = trendAboveAndDown
	case up:
		trend.Band = trendBelowAndUp
	default:
		trend.Band = trendBelowAndDown
	}

	return trend, true
}

func (t IndexTrend) explain(smaWindow, horizon int) string {
	if t.Partial {
		return fmt.Sprintf("%s: not enough history for a %d-day average, counted as neutral", t.Symbol, smaWindow)
	}
	position := "below"
	if t.LastClose > t.Sma {
		position = "above"
	}
	return fmt.Sprintf(
		"%s: %.2f is %s its %d-day average of %.2f, %+.2f%% over %d sessions",
		t.Symbol,
		t.LastClose,
		position,
		smaWindow,
		t.Sma,
		t.Return*100,
		horizon,
	)
}
