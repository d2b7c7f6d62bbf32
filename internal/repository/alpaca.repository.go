package repository

import (
	"fmt"
	"strings"

	"marketmood/internal/domain"

	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=alpaca.repository.go -destination=mocks/mock_alpaca.repository.go

// AlpacaRepository reads holdings from the brokerage. It never
// places or cancels orders.
type AlpacaRepository interface {
	GetPositions() ([]domain.PortfolioPosition, error)
	IsMarketOpen() (bool, error)
}

func NewAlpacaRepository(apiKey, apiSecret string, endpoint string) AlpacaRepository {
	client := alpaca.NewClient(alpaca.ClientOpts{
		APIKey:     apiKey,
		APISecret:  apiSecret,
		BaseURL:    endpoint,
		RetryLimit: 3,
	})

	return &alpacaRepositoryHandler{
		Client: client,
	}
}

type alpacaRepositoryHandler struct {
	Client *alpaca.Client
}

func (h alpacaRepositoryHandler) GetPositions() ([]domain.PortfolioPosition, error) {
	positions, err := h.Client.GetPositions()
	if err != nil {
		return nil, domain.NewTransportError("alpaca", fmt.Errorf("get positions: %w", err))
	}

	out := []domain.PortfolioPosition{}
	for _, p := range positions {
		out = append(out, positionFromAlpaca(p))
	}
	return out, nil
}

func (h alpacaRepositoryHandler) IsMarketOpen() (bool, error) {
	clock, err := h.Client.GetClock()
	if err != nil {
		return false, domain.NewTransportError("alpaca", fmt.Errorf("get clock: %w", err))
	}
	return clock.IsOpen, nil
}

func positionFromAlpaca(p alpaca.Position) domain.PortfolioPosition {
	currentPrice := decimal.Zero
	if p.CurrentPrice != nil {
		currentPrice = *p.CurrentPrice
	}
	marketValue := p.Qty.Mul(currentPrice)
	if p.MarketValue != nil {
		marketValue = *p.MarketValue
	}

	return domain.PortfolioPosition{
		Symbol:       strings.ToUpper(p.Symbol),
		Shares:       p.Qty,
		CostBasis:    p.CostBasis,
		CurrentPrice: currentPrice,
		MarketValue:  marketValue,
	}
}
