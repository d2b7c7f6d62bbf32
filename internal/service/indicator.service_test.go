package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"marketmood/internal/domain"
	"marketmood/internal/repository"
	mock_repository "marketmood/internal/repository/mocks"
	"marketmood/internal/util"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

func testIndicatorOpts() IndicatorServiceOpts {
	return IndicatorServiceOpts{
		Volatility:        "^VIX",
		LongVolatility:    "^VIX3M",
		TailRisk:          "^SKEW",
		BondVolatility:    "^MOVE",
		PutCall:           "^CPCE",
		PutCallUnderlying: "SPY",
		Indices:           []string{"^GSPC"},
		LookbackDays:      120,
		RetentionWindow:   60,
		SparklineLength:   30,
	}
}

func datedSeries(values ...float64) []domain.DatedValue {
	out := []domain.DatedValue{}
	for i, v := range values {
		out = append(out, domain.DatedValue{Date: testDate(i), Value: v})
	}
	return out
}

func newTestIndicatorService(t *testing.T, ctrl *gomock.Controller) (*indicatorServiceHandler, *mock_repository.MockPriceRepository, *mock_repository.MockOptionsRepository, repository.HistoryRepository) {
	priceRepository := mock_repository.NewMockPriceRepository(ctrl)
	optionsRepository := mock_repository.NewMockOptionsRepository(ctrl)
	historyRepository := repository.NewHistoryRepository(filepath.Join(t.TempDir(), "history.json"), zap.NewNop().Sugar())

	handler := NewIndicatorService(priceRepository, optionsRepository, historyRepository, testIndicatorOpts()).(*indicatorServiceHandler)
	handler.now = func() time.Time {
		return util.NewDate(2024, 6, 3)
	}
	return handler, priceRepository, optionsRepository, historyRepository
}

func Test_indicatorServiceHandler_fetchPriceIndicator(t *testing.T) {
	ctx := context.Background()
	transportErr := domain.NewTransportError("yahoo", errors.New("timeout"))

	t.Run("chart series is live", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		handler, prices, _, _ := newTestIndicatorService(t, ctrl)
		prices.EXPECT().GetHistory(gomock.Any(), "^VIX", 120).Return(datedSeries(14, 15, 16), nil)

		got := handler.fetchPriceIndicator(ctx, domain.IndicatorVolatility, "^VIX")
		require.Equal(t, domain.ProvenanceLive, got.Provenance)
		require.Equal(t, 16.0, got.Current)
		require.Len(t, got.Series, 3)
	})

	t.Run("quote is the fallback", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		handler, prices, _, _ := newTestIndicatorService(t, ctrl)
		prices.EXPECT().GetHistory(gomock.Any(), "^VIX", 120).Return(nil, transportErr)
		prices.EXPECT().GetLatest(gomock.Any(), "^VIX").Return(17.5, nil)

		got := handler.fetchPriceIndicator(ctx, domain.IndicatorVolatility, "^VIX")
		require.Equal(t, domain.ProvenanceFallback, got.Provenance)
		require.Equal(t, 17.5, got.Current)
		require.NotNil(t, got.Series)
		require.Empty(t, got.Series)
	})

	t.Run("stale from history", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		handler, prices, _, history := newTestIndicatorService(t, ctrl)
		require.NoError(t, history.Append(domain.IndicatorVolatility, "2024-05-30", 18))
		require.NoError(t, history.Append(domain.IndicatorVolatility, "2024-05-31", 19))
		prices.EXPECT().GetHistory(gomock.Any(), "^VIX", 120).Return(nil, transportErr)
		prices.EXPECT().GetLatest(gomock.Any(), "^VIX").Return(0.0, transportErr)

		got := handler.fetchPriceIndicator(ctx, domain.IndicatorVolatility, "^VIX")
		require.Equal(t, domain.ProvenanceStale, got.Provenance)
		require.Equal(t, 19.0, got.Current)
		require.True(t, got.Available())
		require.False(t, got.Fresh())
		require.Error(t, got.Err)
	})

	t.Run("missing without history", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		handler, prices, _, _ := newTestIndicatorService(t, ctrl)
		prices.EXPECT().GetHistory(gomock.Any(), "^VIX", 120).Return(nil, transportErr)
		prices.EXPECT().GetLatest(gomock.Any(), "^VIX").Return(0.0, transportErr)

		got := handler.fetchPriceIndicator(ctx, domain.IndicatorVolatility, "^VIX")
		require.Equal(t, domain.ProvenanceMissing, got.Provenance)
		require.False(t, got.Available())
		require.Equal(t, domain.FailureTransport, domain.KindOf(got.Err))
	})
}

func Test_indicatorServiceHandler_fetchPutCall(t *testing.T) {
	ctx := context.Background()
	parseErr := domain.NewParseError("yahoo", errors.New("bad json"))

	t.Run("synthetic ratio from options", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		handler, prices, options, _ := newTestIndicatorService(t, ctrl)
		prices.EXPECT().GetHistory(gomock.Any(), "^CPCE", 120).Return(nil, parseErr)
		prices.EXPECT().GetLatest(gomock.Any(), "^CPCE").Return(0.0, parseErr)
		options.EXPECT().GetVolumes(gomock.Any(), "SPY").Return(&repository.OptionVolumes{
			Underlying: "SPY",
			PutVolume:  800,
			CallVolume: 1000,
		}, nil)

		got := handler.fetchPutCall(ctx)
		require.Equal(t, domain.ProvenanceFallback, got.Provenance)
		require.InDelta(t, 0.8, got.Current, 1e-9)
		require.Equal(t, "option volume SPY", got.Source)
	})

	t.Run("direct ticker wins", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		handler, prices, _, _ := newTestIndicatorService(t, ctrl)
		prices.EXPECT().GetHistory(gomock.Any(), "^CPCE", 120).Return(datedSeries(0.6, 0.7), nil)

		got := handler.fetchPutCall(ctx)
		require.Equal(t, domain.ProvenanceLive, got.Provenance)
		require.Equal(t, 0.7, got.Current)
	})

	t.Run("no call volume", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		handler, prices, options, _ := newTestIndicatorService(t, ctrl)
		prices.EXPECT().GetHistory(gomock.Any(), "^CPCE", 120).Return(nil, parseErr)
		prices.EXPECT().GetLatest(gomock.Any(), "^CPCE").Return(0.0, parseErr)
		options.EXPECT().GetVolumes(gomock.Any(), "SPY").Return(&repository.OptionVolumes{Underlying: "SPY"}, nil)

		got := handler.fetchPutCall(ctx)
		require.Equal(t, domain.ProvenanceMissing, got.Provenance)
		require.Equal(t, domain.FailureInsufficientData, domain.KindOf(got.Err))
	})
}

func Test_indicatorServiceHandler_FetchAll(t *testing.T) {
	ctrl := gomock.NewController(t)
	handler, prices, options, _ := newTestIndicatorService(t, ctrl)
	failure := domain.NewTransportError("yahoo", errors.New("connection reset"))

	prices.EXPECT().GetHistory(gomock.Any(), "^VIX", 120).Return(datedSeries(13), nil)
	prices.EXPECT().GetHistory(gomock.Any(), "^VIX3M", 120).Return(nil, failure)
	prices.EXPECT().GetLatest(gomock.Any(), "^VIX3M").Return(0.0, failure)
	prices.EXPECT().GetHistory(gomock.Any(), "^SKEW", 120).Return(datedSeries(130), nil)
	prices.EXPECT().GetHistory(gomock.Any(), "^MOVE", 120).Return(datedSeries(95), nil)
	prices.EXPECT().GetHistory(gomock.Any(), "^CPCE", 120).Return(datedSeries(0.65), nil)
	prices.EXPECT().GetHistory(gomock.Any(), "^GSPC", 120).Return(datedSeries(5000, 5010), nil)
	options.EXPECT().GetVolumes(gomock.Any(), gomock.Any()).Times(0)

	got := handler.FetchAll(context.Background())
	require.Equal(t, domain.ProvenanceLive, got.Volatility.Provenance)
	require.Equal(t, domain.ProvenanceMissing, got.LongVolatility.Provenance)
	require.Equal(t, domain.ProvenanceLive, got.TailRisk.Provenance)
	require.Equal(t, domain.ProvenanceLive, got.BondVolatility.Provenance)
	require.Equal(t, domain.ProvenanceLive, got.PutCall.Provenance)
	require.Len(t, got.Indices, 1)
	require.Equal(t, "^GSPC", got.Indices[0].Name)
	require.Len(t, got.All(), 6)
}

func Test_indicatorServiceHandler_Record(t *testing.T) {
	ctx := context.Background()

	t.Run("backfills and appends fresh indicators", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		handler, _, _, history := newTestIndicatorService(t, ctrl)

		vix := domain.Indicator{
			Name:       domain.IndicatorVolatility,
			Current:    13,
			Provenance: domain.ProvenanceLive,
			Series:     datedSeries(11, 12, 13),
		}
		putCall := domain.Indicator{
			Name:       domain.IndicatorPutCall,
			Current:    0.8,
			Provenance: domain.ProvenanceFallback,
			Series:     []domain.DatedValue{},
		}
		got := handler.Record(ctx, domain.MarketIndicators{Volatility: vix, PutCall: putCall})

		stored := history.Load(domain.IndicatorVolatility)
		require.Equal(t, datedSeries(11, 12, 13), stored)
		require.Equal(t, stored, got.Volatility.History)
		require.Len(t, got.Volatility.Sparkline, 3)

		require.Equal(t, []domain.DatedValue{{Date: "2024-06-03", Value: 0.8}}, history.Load(domain.IndicatorPutCall))
	})

	t.Run("chart value is keyed by its last bar", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		handler, _, _, history := newTestIndicatorService(t, ctrl)
		// the run is on monday 2024-06-03, the last bar is friday's
		require.NoError(t, history.Append(domain.IndicatorVolatility, "2024-05-30", 12.5))

		got := handler.Record(ctx, domain.MarketIndicators{
			Volatility: domain.Indicator{
				Name:       domain.IndicatorVolatility,
				Current:    12.9,
				Provenance: domain.ProvenanceLive,
				Series:     []domain.DatedValue{{Date: "2024-05-30", Value: 12.5}, {Date: "2024-05-31", Value: 12.9}},
			},
		})

		require.Equal(t, []domain.DatedValue{
			{Date: "2024-05-30", Value: 12.5},
			{Date: "2024-05-31", Value: 12.9},
		}, history.Load(domain.IndicatorVolatility))
		require.Len(t, got.Volatility.History, 2)
	})

	t.Run("no backfill once the window is full", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		handler, _, _, history := newTestIndicatorService(t, ctrl)
		handler.Opts.RetentionWindow = 2
		handler.Opts.SparklineLength = 1
		require.NoError(t, history.Append(domain.IndicatorTailRisk, "2024-05-01", 120))
		require.NoError(t, history.Append(domain.IndicatorTailRisk, "2024-05-02", 121))

		got := handler.Record(ctx, domain.MarketIndicators{
			TailRisk: domain.Indicator{
				Name:       domain.IndicatorTailRisk,
				Current:    125,
				Provenance: domain.ProvenanceLive,
				Series:     []domain.DatedValue{{Date: "2024-06-03", Value: 125}},
			},
		})

		require.Len(t, history.Load(domain.IndicatorTailRisk), 3)
		require.Len(t, got.TailRisk.History, 2)
		require.Equal(t, []domain.DatedValue{{Date: "2024-06-03", Value: 125}}, got.TailRisk.Sparkline)
	})

	t.Run("sparkline is the tail of the window", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		handler, _, _, history := newTestIndicatorService(t, ctrl)
		for i := 0; i < 40; i++ {
			require.NoError(t, history.Append(domain.IndicatorBondVolatility, testDate(i), float64(90+i)))
		}
		require.NoError(t, history.Append(domain.IndicatorTailRisk, testDate(0), 120))

		got := handler.Record(ctx, domain.MarketIndicators{
			BondVolatility: domain.Indicator{Name: domain.IndicatorBondVolatility, Current: 131, Provenance: domain.ProvenanceFallback},
			TailRisk:       domain.Indicator{Name: domain.IndicatorTailRisk, Current: 121, Provenance: domain.ProvenanceFallback},
		})

		for _, indicator := range []domain.Indicator{got.BondVolatility, got.TailRisk} {
			want := len(indicator.History)
			if want > handler.Opts.SparklineLength {
				want = handler.Opts.SparklineLength
			}
			require.Len(t, indicator.Sparkline, want, indicator.Name)
			require.Equal(t, indicator.History[len(indicator.History)-want:], indicator.Sparkline)
		}
		require.Len(t, got.BondVolatility.History, 41)
		require.Len(t, got.BondVolatility.Sparkline, 30)
		require.Len(t, got.TailRisk.Sparkline, 2)
	})

	t.Run("stale and missing are not appended", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		handler, _, _, history := newTestIndicatorService(t, ctrl)
		require.NoError(t, history.Append(domain.IndicatorBondVolatility, "2024-05-31", 101))

		got := handler.Record(ctx, domain.MarketIndicators{
			BondVolatility: domain.Indicator{
				Name:       domain.IndicatorBondVolatility,
				Current:    101,
				Provenance: domain.ProvenanceStale,
			},
			Volatility: domain.MissingIndicator(domain.IndicatorVolatility, nil),
		})

		require.Len(t, history.Load(domain.IndicatorBondVolatility), 1)
		require.Len(t, got.BondVolatility.History, 1)
		require.Empty(t, history.Load(domain.IndicatorVolatility))
		require.NotNil(t, got.Volatility.History)
		require.NotNil(t, got.Volatility.Sparkline)
	})

	t.Run("same day rerun overwrites", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		handler, _, _, history := newTestIndicatorService(t, ctrl)
		vix := domain.Indicator{Name: domain.IndicatorVolatility, Current: 14, Provenance: domain.ProvenanceFallback}

		handler.Record(ctx, domain.MarketIndicators{Volatility: vix})
		vix.Current = 15
		handler.Record(ctx, domain.MarketIndicators{Volatility: vix})

		require.Equal(t, []domain.DatedValue{{Date: "2024-06-03", Value: 15}}, history.Load(domain.IndicatorVolatility))
	})
}
