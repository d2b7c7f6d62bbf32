package service

import (
	"context"
	"fmt"
	"time"

	"marketmood/internal/domain"
	"marketmood/internal/logger"
	"marketmood/internal/repository"
)

type IndicatorServiceOpts struct {
	Volatility        string
	LongVolatility    string
	TailRisk          string
	BondVolatility    string
	PutCall           string
	PutCallUnderlying string
	Indices           []string

	LookbackDays    int
	RetentionWindow int
	SparklineLength int
}

// IndicatorService fetches every market indicator and keeps the
// history store in step with what was fetched.
type IndicatorService interface {
	// FetchAll never fails. Each indicator is fetched on its own and
	// anything that could not be fetched comes back Stale or Missing.
	FetchAll(ctx context.Context) domain.MarketIndicators
	// Record backfills and appends the current value of every freshly
	// fetched indicator, keyed by its last bar date for chart values and
	// by today otherwise, then fills in the History and Sparkline of
	// every indicator from the store. It does not save the store.
	Record(ctx context.Context, indicators domain.MarketIndicators) domain.MarketIndicators
}

type indicatorServiceHandler struct {
	PriceRepository   repository.PriceRepository
	OptionsRepository repository.OptionsRepository
	HistoryRepository repository.HistoryRepository
	Opts              IndicatorServiceOpts

	now func() time.Time
}

func NewIndicatorService(
	priceRepository repository.PriceRepository,
	optionsRepository repository.OptionsRepository,
	historyRepository repository.HistoryRepository,
	opts IndicatorServiceOpts,
) IndicatorService {
	return &indicatorServiceHandler{
		PriceRepository:   priceRepository,
		OptionsRepository: optionsRepository,
		HistoryRepository: historyRepository,
		Opts:              opts,
		now:               time.Now,
	}
}

func (h *indicatorServiceHandler) FetchAll(ctx context.Context) domain.MarketIndicators {
	profile, _ := domain.GetProfile(ctx)
	_, endSpan := profile.StartNewSpan("fetch indicators")
	defer endSpan()

	out := domain.MarketIndicators{
		Volatility:     h.fetchPriceIndicator(ctx, domain.IndicatorVolatility, h.Opts.Volatility),
		LongVolatility: h.fetchPriceIndicator(ctx, domain.IndicatorLongVolatility, h.Opts.LongVolatility),
		TailRisk:       h.fetchPriceIndicator(ctx, domain.IndicatorTailRisk, h.Opts.TailRisk),
		BondVolatility: h.fetchPriceIndicator(ctx, domain.IndicatorBondVolatility, h.Opts.BondVolatility),
		PutCall:        h.fetchPutCall(ctx),
		Indices:        []domain.Indicator{},
	}
	for _, symbol := range h.Opts.Indices {
		out.Indices = append(out.Indices, h.fetchPriceIndicator(ctx, symbol, symbol))
	}

	return out
}

// fetchPriceIndicator tries the daily chart, then the latest quote,
// then the last stored value.
func (h *indicatorServiceHandler) fetchPriceIndicator(ctx context.Context, name, symbol string) domain.Indicator {
	indicator := h.fetchFromPrices(ctx, name, symbol)
	if indicator.Available() {
		return indicator
	}
	return h.stale(ctx, name, indicator.Err)
}

func (h *indicatorServiceHandler) fetchFromPrices(ctx context.Context, name, symbol string) domain.Indicator {
	log := logger.FromContext(ctx)

	series, err := h.PriceRepository.GetHistory(ctx, symbol, h.Opts.LookbackDays)
	if err == nil && len(series) > 0 {
		return domain.Indicator{
			Name:       name,
			Source:     "yahoo chart " + symbol,
			Current:    series[len(series)-1].Value,
			Provenance: domain.ProvenanceLive,
			Series:     series,
		}
	}
	log.Warnf("failed to get %s history from %s (%s), trying latest quote: %v", name, symbol, domain.KindOf(err), err)

	latest, err := h.PriceRepository.GetLatest(ctx, symbol)
	if err != nil {
		log.Warnf("failed to get %s quote from %s (%s): %v", name, symbol, domain.KindOf(err), err)
		return domain.MissingIndicator(name, fmt.Errorf("failed to fetch %s: %w", name, err))
	}
	return domain.Indicator{
		Name:       name,
		Source:     "yahoo quote " + symbol,
		Current:    latest,
		Provenance: domain.ProvenanceFallback,
		Series:     []domain.DatedValue{},
	}
}

// fetchPutCall prefers the published ratio and falls back to one
// computed from the option chain volumes.
func (h *indicatorServiceHandler) fetchPutCall(ctx context.Context) domain.Indicator {
	log := logger.FromContext(ctx)
	name := domain.IndicatorPutCall

	var lastErr error
	if h.Opts.PutCall != "" {
		indicator := h.fetchFromPrices(ctx, name, h.Opts.PutCall)
		if indicator.Available() {
			return indicator
		}
		lastErr = indicator.Err
	}

	if h.Opts.PutCallUnderlying != "" {
		ratio, err := h.syntheticPutCall(ctx)
		if err == nil {
			return domain.Indicator{
				Name:       name,
				Source:     "option volume " + h.Opts.PutCallUnderlying,
				Current:    ratio,
				Provenance: domain.ProvenanceFallback,
				Series:     []domain.DatedValue{},
			}
		}
		log.Warnf("failed to compute put/call ratio from %s options (%s): %v", h.Opts.PutCallUnderlying, domain.KindOf(err), err)
		lastErr = err
	}

	return h.stale(ctx, name, lastErr)
}

func (h *indicatorServiceHandler) syntheticPutCall(ctx context.Context) (float64, error) {
	volumes, err := h.OptionsRepository.GetVolumes(ctx, h.Opts.PutCallUnderlying)
	if err != nil {
		return 0, err
	}
	return volumes.PutCallRatio()
}

// stale carries the last stored value forward. The stored window
// stands in for the provider series so momentum still has closes to
// work with.
func (h *indicatorServiceHandler) stale(ctx context.Context, name string, err error) domain.Indicator {
	stored := h.HistoryRepository.Window(name, h.Opts.RetentionWindow)
	if len(stored) == 0 {
		logger.FromContext(ctx).Warnf("%s unavailable and no stored history", name)
		return domain.MissingIndicator(name, err)
	}

	last := stored[len(stored)-1]
	logger.FromContext(ctx).Warnf("%s unavailable, using stored value %.2f from %s", name, last.Value, last.Date)
	return domain.Indicator{
		Name:       name,
		Source:     "history " + last.Date,
		Current:    last.Value,
		Provenance: domain.ProvenanceStale,
		Series:     stored,
		Err:        err,
	}
}

func (h *indicatorServiceHandler) Record(ctx context.Context, indicators domain.MarketIndicators) domain.MarketIndicators {
	today := domain.DateKey(h.now())

	record := func(indicator domain.Indicator) domain.Indicator {
		if indicator.Fresh() {
			h.backfill(ctx, indicator)
			if err := h.HistoryRepository.Append(indicator.Name, asOf(indicator, today), indicator.Current); err != nil {
				logger.FromContext(ctx).Warnf("failed to record %s: %v", indicator.Name, err)
			}
		}
		indicator.History = h.HistoryRepository.Window(indicator.Name, h.Opts.RetentionWindow)
		indicator.Sparkline = domain.Tail(indicator.History, h.Opts.SparklineLength)
		return indicator
	}

	out := domain.MarketIndicators{
		Volatility:     record(indicators.Volatility),
		LongVolatility: record(indicators.LongVolatility),
		TailRisk:       record(indicators.TailRisk),
		BondVolatility: record(indicators.BondVolatility),
		PutCall:        record(indicators.PutCall),
		Indices:        []domain.Indicator{},
	}
	for _, index := range indicators.Indices {
		out.Indices = append(out.Indices, record(index))
	}
	return out
}

// asOf is the date a fresh value belongs to. A chart value is the close
// of its last bar, which on weekends and holidays is not today.
func asOf(indicator domain.Indicator, today string) string {
	if indicator.Provenance == domain.ProvenanceLive && len(indicator.Series) > 0 {
		return indicator.Series[len(indicator.Series)-1].Date
	}
	return today
}

// backfill seeds a short stored series from the provider series so
// charts have data on the first run. Appends are idempotent per date.
func (h *indicatorServiceHandler) backfill(ctx context.Context, indicator domain.Indicator) {
	if len(indicator.Series) == 0 {
		return
	}
	if len(h.HistoryRepository.Load(indicator.Name)) >= h.Opts.RetentionWindow {
		return
	}
	for _, v := range domain.Tail(indicator.Series, h.Opts.RetentionWindow) {
		if err := h.HistoryRepository.Append(indicator.Name, v.Date, v.Value); err != nil {
			logger.FromContext(ctx).Warnf("failed to backfill %s at %s: %v", indicator.Name, v.Date, err)
			return
		}
	}
}
