package repository

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"marketmood/internal/domain"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=position.repository.go -destination=mocks/mock_position.repository.go

// PositionRepository is the local CSV of positions. It is the only
// place the trailing stop percentage and high water mark live.
type PositionRepository interface {
	// List returns an empty slice when the file does not exist
	List() ([]domain.PortfolioPosition, error)
	// Replace overwrites the file with positions, sorted by symbol
	Replace(positions []domain.PortfolioPosition) error
}

type positionRow struct {
	Symbol          string `csv:"symbol"`
	Shares          string `csv:"shares"`
	CostBasis       string `csv:"cost_basis"`
	CurrentPrice    string `csv:"current_price"`
	MarketValue     string `csv:"market_value"`
	TrailingStopPct string `csv:"trailing_stop_pct"`
	HighWaterPrice  string `csv:"high_water_price"`
	StopPrice       string `csv:"stop_price"`
}

type csvPositionRepositoryHandler struct {
	Path string

	create func(path string) (io.WriteCloser, error)
}

func NewPositionRepository(path string) PositionRepository {
	return csvPositionRepositoryHandler{
		Path: path,
		create: func(path string) (io.WriteCloser, error) {
			return os.Create(path)
		},
	}
}

func parseDecimal(field, value string) (decimal.Decimal, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s %q: %w", field, value, err)
	}
	return d, nil
}

func (r positionRow) toDomain() (*domain.PortfolioPosition, error) {
	out := domain.PortfolioPosition{
		Symbol: strings.ToUpper(strings.TrimSpace(r.Symbol)),
	}
	fields := []struct {
		name  string
		value string
		dst   *decimal.Decimal
	}{
		{"shares", r.Shares, &out.Shares},
		{"cost_basis", r.CostBasis, &out.CostBasis},
		{"current_price", r.CurrentPrice, &out.CurrentPrice},
		{"market_value", r.MarketValue, &out.MarketValue},
		{"trailing_stop_pct", r.TrailingStopPct, &out.TrailingStopPct},
		{"high_water_price", r.HighWaterPrice, &out.HighWaterPrice},
		{"stop_price", r.StopPrice, &out.StopPrice},
	}
	for _, f := range fields {
		d, err := parseDecimal(f.name, f.value)
		if err != nil {
			return nil, fmt.Errorf("failed to parse position %s: %w", out.Symbol, err)
		}
		*f.dst = d
	}
	return &out, nil
}

func (h csvPositionRepositoryHandler) List() ([]domain.PortfolioPosition, error) {
	f, err := os.Open(h.Path)
	if os.IsNotExist(err) {
		return []domain.PortfolioPosition{}, nil
	}
	if err != nil {
		return nil, domain.NewPersistenceError(h.Path, err)
	}
	defer f.Close()

	rows := []positionRow{}
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, domain.NewParseError(h.Path, fmt.Errorf("failed to read positions: %w", err))
	}

	out := []domain.PortfolioPosition{}
	for _, row := range rows {
		if strings.TrimSpace(row.Symbol) == "" {
			continue
		}
		p, err := row.toDomain()
		if err != nil {
			return nil, domain.NewParseError(h.Path, err)
		}
		out = append(out, *p)
	}
	return out, nil
}

func (h csvPositionRepositoryHandler) Replace(positions []domain.PortfolioPosition) error {
	rows := []positionRow{}
	for _, p := range positions {
		rows = append(rows, positionRow{
			Symbol:          p.Symbol,
			Shares:          p.Shares.String(),
			CostBasis:       p.CostBasis.StringFixed(2),
			CurrentPrice:    p.CurrentPrice.String(),
			MarketValue:     p.MarketValue.StringFixed(2),
			TrailingStopPct: p.TrailingStopPct.String(),
			HighWaterPrice:  p.HighWaterPrice.String(),
			StopPrice:       p.StopPrice.StringFixed(2),
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Symbol < rows[j].Symbol
	})

	if err := os.MkdirAll(filepath.Dir(h.Path), 0755); err != nil {
		return domain.NewPersistenceError(h.Path, err)
	}
	f, err := h.create(h.Path)
	if err != nil {
		return domain.NewPersistenceError(h.Path, err)
	}

	if err := gocsv.Marshal(&rows, f); err != nil {
		f.Close()
		return domain.NewPersistenceError(h.Path, fmt.Errorf("failed to write positions: %w", err))
	}
	// a failed flush only shows up on close
	if err := f.Close(); err != nil {
		return domain.NewPersistenceError(h.Path, fmt.Errorf("failed to close positions file: %w", err))
	}
	return nil
}
