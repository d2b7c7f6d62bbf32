package repository

import (
	"context"
	"fmt"
	"time"

	"marketmood/internal/domain"

	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/piquette/finance-go/quote"
	"golang.org/x/time/rate"
)

//go:generate mockgen -source=price.repository.go -destination=mocks/mock_price.repository.go

// PriceRepository reads daily history and latest quotes for tickers,
// including index tickers like ^VIX.
type PriceRepository interface {
	// GetHistory returns daily closes over the last lookbackDays
	// calendar days, oldest first
	GetHistory(ctx context.Context, symbol string, lookbackDays int) ([]domain.DatedValue, error)
	GetLatest(ctx context.Context, symbol string) (float64, error)
}

type yahooPriceRepositoryHandler struct {
	Limiter *rate.Limiter
	now     func() time.Time
}

func NewPriceRepository(limiter *rate.Limiter) PriceRepository {
	return yahooPriceRepositoryHandler{
		Limiter: limiter,
		now:     time.Now,
	}
}

func (h yahooPriceRepositoryHandler) GetHistory(ctx context.Context, symbol string, lookbackDays int) ([]domain.DatedValue, error) {
	source := "yahoo chart " + symbol
	if err := waitLimiter(ctx, h.Limiter); err != nil {
		return nil, domain.NewTransportError(source, err)
	}

	end := h.now().UTC()
	start := end.AddDate(0, 0, -lookbackDays)
	params := &chart.Params{
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Symbol:   symbol,
		Interval: datetime.OneDay,
	}
	iter := chart.Get(params)

	// keyed by date so a duplicated intraday bar for today
	// doesn't produce two entries
	byDate := map[string]int{}
	out := []domain.DatedValue{}
	for iter.Next() {
		bar := iter.Bar()
		if bar == nil || bar.Close.IsZero() {
			continue
		}
		date := time.Unix(int64(bar.Timestamp), 0).UTC().Format(time.DateOnly)
		value := bar.Close.InexactFloat64()
		if i, ok := byDate[date]; ok {
			out[i].Value = value
			continue
		}
		byDate[date] = len(out)
		out = append(out, domain.DatedValue{Date: date, Value: value})
	}
	if err := iter.Err(); err != nil {
		return nil, domain.NewTransportError(source, fmt.Errorf("failed to get prices for %s: %w", symbol, err))
	}
	if len(out) == 0 {
		return nil, domain.NewInsufficientDataError(source, fmt.Errorf("no closes returned for %s", symbol))
	}

	return out, nil
}

func (h yahooPriceRepositoryHandler) GetLatest(ctx context.Context, symbol string) (float64, error) {
	source := "yahoo quote " + symbol
	if err := waitLimiter(ctx, h.Limiter); err != nil {
		return 0, domain.NewTransportError(source, err)
	}

	q, err := quote.Get(symbol)
	if err != nil {
		return 0, domain.NewTransportError(source, fmt.Errorf("failed to get quote for %s: %w", symbol, err))
	}
	if q == nil || q.RegularMarketPrice == 0 {
		return 0, domain.NewInsufficientDataError(source, fmt.Errorf("got 0 price for %s", symbol))
	}

	return q.RegularMarketPrice, nil
}

func waitLimiter(ctx context.Context, limiter *rate.Limiter) error {
	if limiter == nil {
		return nil
	}
	return limiter.Wait(ctx)
}
