package service

import (
	"fmt"
	"math"

	"marketmood/internal/domain"

	"github.com/montanaflynn/stats"
)

const tradingDaysPerYear = 252

type SeriesMetrics struct {
	Mean  float64
	Stdev float64
	// ZScore is how far Current sits from Mean, in sample stdevs
	ZScore float64
	// AnnualizedStdev is the realized volatility of the day over day
	// returns
	AnnualizedStdev float64
}

// calculateSeriesMetrics summarizes a windowed series against the
// current value. It needs at least three points.
func calculateSeriesMetrics(series []domain.DatedValue, current float64) (*SeriesMetrics, error) {
	if len(series) < 3 {
		return nil, fmt.Errorf("cannot calculate metrics on %d points", len(series))
	}

	values := stats.Float64Data{}
	returns := stats.Float64Data{}
	for i, v := range series {
		values = append(values, v.Value)
		if i > 0 && series[i-1].Value != 0 {
			returns = append(returns, v.Value/series[i-1].Value-1)
		}
	}

	mean, err := stats.Mean(values)
	if err != nil {
		return nil, err
	}
	stdev, err := stats.StandardDeviationSample(values)
	if err != nil {
		return nil, err
	}

	out := SeriesMetrics{
		Mean:  mean,
		Stdev: stdev,
	}
	if stdev > 0 {
		out.ZScore = (current - mean) / stdev
	}
	if len(returns) >= 2 {
		returnStdev, err := stats.StandardDeviationSample(returns)
		if err == nil {
			out.AnnualizedStdev = returnStdev * math.Sqrt(tradingDaysPerYear)
		}
	}

	return &out, nil
}

// describeMetrics is the short context line shown next to an
// indicator, empty when there is not enough history.
func describeMetrics(indicator domain.Indicator) string {
	if !indicator.Available() {
		return ""
	}
	m, err := calculateSeriesMetrics(indicator.History, indicator.Current)
	if err != nil {
		return ""
	}
	return fmt.Sprintf(
		"%+.1f sd vs %d-day mean %.2f, realized vol %.0f%%",
		m.ZScore,
		len(indicator.History),
		m.Mean,
		m.AnnualizedStdev*100,
	)
}
