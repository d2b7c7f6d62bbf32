package domain

import (
	"github.com/shopspring/decimal"
)

// PortfolioPosition is a brokerage holding plus the locally managed
// trailing stop. Positions are created and merged by the portfolio
// sync and only read by reporting.
type PortfolioPosition struct {
	Symbol       string
	Shares       decimal.Decimal
	CostBasis    decimal.Decimal
	CurrentPrice decimal.Decimal
	MarketValue  decimal.Decimal

	// TrailingStopPct is a percentage, i.e. 8 means 8%
	TrailingStopPct decimal.Decimal
	HighWaterPrice  decimal.Decimal
	StopPrice       decimal.Decimal

	// may not be set outside of reporting
	Fundamentals *Fundamentals
}

func (p PortfolioPosition) UnrealizedPL() decimal.Decimal {
	return p.MarketValue.Sub(p.CostBasis)
}

// StopTriggered is true once the price has fallen through the stop.
func (p PortfolioPosition) StopTriggered() bool {
	return !p.StopPrice.IsZero() && p.CurrentPrice.LessThanOrEqual(p.StopPrice)
}

type Fundamentals struct {
	Symbol           string
	TrailingPE       *float64
	ForwardPE        *float64
	FiftyTwoWeekHigh *float64
	FiftyTwoWeekLow  *float64
	Source           string
}
