package service

import (
	"math"
	"testing"

	"marketmood/internal/domain"

	"github.com/stretchr/testify/require"
)

func Test_calculateSeriesMetrics(t *testing.T) {
	t.Run("too short", func(t *testing.T) {
		_, err := calculateSeriesMetrics(datedSeries(1, 2), 2)
		require.Error(t, err)
	})

	t.Run("flat series", func(t *testing.T) {
		m, err := calculateSeriesMetrics(datedSeries(20, 20, 20, 20), 20)
		require.NoError(t, err)
		require.Equal(t, 20.0, m.Mean)
		require.Equal(t, 0.0, m.Stdev)
		require.Equal(t, 0.0, m.ZScore)
		require.Equal(t, 0.0, m.AnnualizedStdev)
	})

	t.Run("z score and realized vol", func(t *testing.T) {
		m, err := calculateSeriesMetrics(datedSeries(10, 12, 14), 16)
		require.NoError(t, err)
		require.InDelta(t, 12.0, m.Mean, 1e-9)
		require.InDelta(t, 2.0, m.Stdev, 1e-9)
		require.InDelta(t, 2.0, m.ZScore, 1e-9)

		r1, r2 := 0.2, 14.0/12.0-1
		mean := (r1 + r2) / 2
		sampleStdev := math.Sqrt(((r1-mean)*(r1-mean) + (r2-mean)*(r2-mean)) / 1)
		require.InDelta(t, sampleStdev*math.Sqrt(252), m.AnnualizedStdev, 1e-9)
	})
}

func Test_describeMetrics(t *testing.T) {
	require.Equal(t, "", describeMetrics(domain.MissingIndicator("VIX", nil)))
	require.Equal(t, "", describeMetrics(domain.Indicator{Name: "VIX", Provenance: domain.ProvenanceLive, History: datedSeries(1)}))

	got := describeMetrics(domain.Indicator{
		Name:       "VIX",
		Current:    16,
		Provenance: domain.ProvenanceLive,
		History:    datedSeries(10, 12, 14),
	})
	require.Contains(t, got, "+2.0 sd vs 3-day mean 12.00")
}
