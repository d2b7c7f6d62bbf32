package service

import (
	"context"
	"fmt"

	"marketmood/internal/domain"
	"marketmood/internal/logger"
	"marketmood/internal/repository"

	"github.com/shopspring/decimal"
)

// PortfolioService owns the local positions file. Sync is the only
// writer; reporting only reads it.
type PortfolioService interface {
	// Sync pulls positions from the brokerage, merges them into the
	// local file and ratchets trailing stops.
	Sync(ctx context.Context) ([]domain.PortfolioPosition, error)
	// Positions reads the local file and attaches fundamentals where
	// they can be found.
	Positions(ctx context.Context) ([]domain.PortfolioPosition, error)
}

type portfolioServiceHandler struct {
	AlpacaRepository       repository.AlpacaRepository
	PositionRepository     repository.PositionRepository
	FundamentalsRepository repository.FundamentalsRepository
	DefaultTrailingStopPct decimal.Decimal
}

func NewPortfolioService(
	alpacaRepository repository.AlpacaRepository,
	positionRepository repository.PositionRepository,
	fundamentalsRepository repository.FundamentalsRepository,
	defaultTrailingStopPct float64,
) PortfolioService {
	return portfolioServiceHandler{
		AlpacaRepository:       alpacaRepository,
		PositionRepository:     positionRepository,
		FundamentalsRepository: fundamentalsRepository,
		DefaultTrailingStopPct: decimal.NewFromFloat(defaultTrailingStopPct),
	}
}

var oneHundred = decimal.NewFromInt(100)

// applyTrailingStop carries the stop settings of prev (if any) over
// to the fresh brokerage position. The high water mark and the stop
// only ever move up.
func applyTrailingStop(prev *domain.PortfolioPosition, current domain.PortfolioPosition, defaultPct decimal.Decimal) domain.PortfolioPosition {
	out := current
	out.TrailingStopPct = defaultPct
	out.HighWaterPrice = current.CurrentPrice

	if prev != nil {
		if prev.TrailingStopPct.IsPositive() {
			out.TrailingStopPct = prev.TrailingStopPct
		}
		out.HighWaterPrice = decimal.Max(prev.HighWaterPrice, current.CurrentPrice)
	}

	if !out.HighWaterPrice.IsPositive() {
		out.StopPrice = decimal.Zero
		return out
	}

	keep := decimal.NewFromInt(1).Sub(out.TrailingStopPct.Div(oneHundred))
	out.StopPrice = out.HighWaterPrice.Mul(keep).Round(2)
	if prev != nil && prev.StopPrice.GreaterThan(out.StopPrice) {
		out.StopPrice = prev.StopPrice
	}
	return out
}

func (h portfolioServiceHandler) Sync(ctx context.Context) ([]domain.PortfolioPosition, error) {
	log := logger.FromContext(ctx)
	if h.AlpacaRepository == nil {
		return nil, fmt.Errorf("brokerage credentials are not configured")
	}

	held, err := h.AlpacaRepository.GetPositions()
	if err != nil {
		return nil, fmt.Errorf("failed to get brokerage positions: %w", err)
	}

	existing, err := h.PositionRepository.List()
	if err != nil {
		return nil, fmt.Errorf("failed to read local positions: %w", err)
	}
	bySymbol := map[string]domain.PortfolioPosition{}
	for _, p := range existing {
		bySymbol[p.Symbol] = p
	}

	out := []domain.PortfolioPosition{}
	for _, p := range held {
		var prev *domain.PortfolioPosition
		if e, ok := bySymbol[p.Symbol]; ok {
			prev = &e
		} else {
			log.Infof("tracking new position %s with a %s%% trailing stop", p.Symbol, h.DefaultTrailingStopPct)
		}
		merged := applyTrailingStop(prev, p, h.DefaultTrailingStopPct)
		if merged.StopTriggered() {
			log.Warnf("%s at %s is at or below its stop of %s", merged.Symbol, merged.CurrentPrice, merged.StopPrice)
		}
		out = append(out, merged)
		delete(bySymbol, p.Symbol)
	}
	for symbol := range bySymbol {
		log.Infof("dropping %s, no longer held", symbol)
	}

	if err := h.PositionRepository.Replace(out); err != nil {
		return nil, fmt.Errorf("failed to write local positions: %w", err)
	}

	return out, nil
}

func (h portfolioServiceHandler) Positions(ctx context.Context) ([]domain.PortfolioPosition, error) {
	profile, _ := domain.GetProfile(ctx)
	_, endSpan := profile.StartNewSpan("positions")
	defer endSpan()

	positions, err := h.PositionRepository.List()
	if err != nil {
		return nil, fmt.Errorf("failed to read local positions: %w", err)
	}

	for i, p := range positions {
		if h.FundamentalsRepository == nil {
			break
		}
		f, err := h.FundamentalsRepository.Get(ctx, p.Symbol)
		if err != nil {
			logger.FromContext(ctx).Warnf("no fundamentals for %s (%s): %v", p.Symbol, domain.KindOf(err), err)
			continue
		}
		positions[i].Fundamentals = f
	}

	return positions, nil
}
