package repository

import (
	"context"
	"fmt"

	"marketmood/internal/domain"

	"github.com/piquette/finance-go/options"
	"golang.org/x/time/rate"
)

//go:generate mockgen -source=options.repository.go -destination=mocks/mock_options.repository.go

type OptionVolumes struct {
	Underlying string
	PutVolume  int
	CallVolume int
}

// PutCallRatio is put volume over call volume
func (v OptionVolumes) PutCallRatio() (float64, error) {
	if v.CallVolume <= 0 {
		return 0, domain.NewInsufficientDataError("options "+v.Underlying, fmt.Errorf("no call volume for %s", v.Underlying))
	}
	return float64(v.PutVolume) / float64(v.CallVolume), nil
}

type OptionsRepository interface {
	// GetVolumes sums traded put and call volume across the nearest
	// expiration of the underlying's option chain
	GetVolumes(ctx context.Context, underlying string) (*OptionVolumes, error)
}

type yahooOptionsRepositoryHandler struct {
	Limiter *rate.Limiter
}

func NewOptionsRepository(limiter *rate.Limiter) OptionsRepository {
	return yahooOptionsRepositoryHandler{
		Limiter: limiter,
	}
}

func (h yahooOptionsRepositoryHandler) GetVolumes(ctx context.Context, underlying string) (*OptionVolumes, error) {
	source := "yahoo options " + underlying
	if err := waitLimiter(ctx, h.Limiter); err != nil {
		return nil, domain.NewTransportError(source, err)
	}

	out := OptionVolumes{
		Underlying: underlying,
	}
	numStraddles := 0

	iter := options.GetStraddle(underlying)
	for iter.Next() {
		s := iter.Straddle()
		if s == nil {
			continue
		}
		numStraddles++
		if s.Put != nil {
			out.PutVolume += s.Put.Volume
		}
		if s.Call != nil {
			out.CallVolume += s.Call.Volume
		}
	}
	if err := iter.Err(); err != nil {
		return nil, domain.NewTransportError(source, fmt.Errorf("failed to get option chain for %s: %w", underlying, err))
	}
	if numStraddles == 0 {
		return nil, domain.NewInsufficientDataError(source, fmt.Errorf("empty option chain for %s", underlying))
	}

	return &out, nil
}
