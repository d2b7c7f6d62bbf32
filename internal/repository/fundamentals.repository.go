package repository

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"marketmood/internal/cache"
	"marketmood/internal/domain"
	"marketmood/internal/logger"

	"github.com/PuerkitoBio/goquery"
	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/equity"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

//go:generate mockgen -source=fundamentals.repository.go -destination=mocks/mock_fundamentals.repository.go

type FundamentalsRepository interface {
	Get(ctx context.Context, symbol string) (*domain.Fundamentals, error)
}

type FundamentalsRepositoryOpts struct {
	HttpClient  *http.Client
	Limiter     *rate.Limiter
	ScrapeURL   string
	UserAgent   string
	CacheTTL    time.Duration
	CacheSize   int
	MaxFailures uint32
	Logger      *zap.SugaredLogger
}

type fundamentalsRepositoryHandler struct {
	HttpClient *http.Client
	Limiter    *rate.Limiter
	ScrapeURL  string
	UserAgent  string

	Cache   *cache.TTLCache[domain.Fundamentals]
	Breaker *gobreaker.CircuitBreaker

	getEquity func(symbol string) (*finance.Equity, error)
}

func NewFundamentalsRepository(opts FundamentalsRepositoryOpts) FundamentalsRepository {
	maxFailures := opts.MaxFailures
	log := opts.Logger
	if log == nil {
		log = zap.S()
	}
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "fundamentals-scrape",
		MaxRequests: 1,
		Timeout:     5 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warnf("circuit breaker %s: %s -> %s", name, from, to)
		},
	})

	return &fundamentalsRepositoryHandler{
		HttpClient: opts.HttpClient,
		Limiter:    opts.Limiter,
		ScrapeURL:  opts.ScrapeURL,
		UserAgent:  opts.UserAgent,
		Cache:      cache.NewTTLCache[domain.Fundamentals](opts.CacheTTL, opts.CacheSize),
		Breaker:    breaker,
		getEquity:  equity.Get,
	}
}

// Get tries the quote API first and scrapes the snapshot page when
// that fails or comes back empty. Results are cached per symbol.
func (h *fundamentalsRepositoryHandler) Get(ctx context.Context, symbol string) (*domain.Fundamentals, error) {
	symbol = strings.ToUpper(symbol)
	if f, ok := h.Cache.Get(symbol); ok {
		return &f, nil
	}

	f, err := h.fromQuote(ctx, symbol)
	if err != nil {
		logger.FromContext(ctx).Warnf("quote fundamentals for %s failed, trying scrape: %v", symbol, err)
		f, err = h.fromScrape(ctx, symbol)
		if err != nil {
			return nil, err
		}
	}

	h.Cache.Set(symbol, *f)
	return f, nil
}

func positiveOrNil(f float64) *float64 {
	if f <= 0 {
		return nil
	}
	return &f
}

func (h *fundamentalsRepositoryHandler) fromQuote(ctx context.Context, symbol string) (*domain.Fundamentals, error) {
	source := "yahoo equity " + symbol
	if err := waitLimiter(ctx, h.Limiter); err != nil {
		return nil, domain.NewTransportError(source, err)
	}

	e, err := h.getEquity(symbol)
	if err != nil {
		return nil, domain.NewTransportError(source, err)
	}
	if e == nil {
		return nil, domain.NewInsufficientDataError(source, fmt.Errorf("no quote for %s", symbol))
	}

	out := domain.Fundamentals{
		Symbol:           symbol,
		TrailingPE:       positiveOrNil(e.TrailingPE),
		ForwardPE:        positiveOrNil(e.ForwardPE),
		FiftyTwoWeekHigh: positiveOrNil(e.FiftyTwoWeekHigh),
		FiftyTwoWeekLow:  positiveOrNil(e.FiftyTwoWeekLow),
		Source:           "yahoo",
	}
	if out.TrailingPE == nil && out.ForwardPE == nil && out.FiftyTwoWeekHigh == nil {
		return nil, domain.NewInsufficientDataError(source, fmt.Errorf("quote for %s has no fundamentals", symbol))
	}

	return &out, nil
}

func (h *fundamentalsRepositoryHandler) fromScrape(ctx context.Context, symbol string) (*domain.Fundamentals, error) {
	source := "snapshot page " + symbol
	if h.ScrapeURL == "" {
		return nil, domain.NewTransportError(source, fmt.Errorf("no scrape url configured"))
	}

	result, err := h.Breaker.Execute(func() (interface{}, error) {
		return h.fetchSnapshot(ctx, symbol)
	})
	if err != nil {
		var fe *domain.FetchError
		if errors.As(err, &fe) {
			return nil, err
		}
		return nil, domain.NewTransportError(source, err)
	}
	fields := result.(map[string]string)

	out := domain.Fundamentals{
		Symbol:     symbol,
		TrailingPE: parseLabeledNumber(fields["P/E"]),
		ForwardPE:  parseLabeledNumber(fields["Forward P/E"]),
		Source:     "scrape",
	}
	if low, high, ok := strings.Cut(fields["52W Range"], "-"); ok {
		out.FiftyTwoWeekLow = parseLabeledNumber(low)
		out.FiftyTwoWeekHigh = parseLabeledNumber(high)
	}
	if out.TrailingPE == nil && out.ForwardPE == nil && out.FiftyTwoWeekHigh == nil {
		return nil, domain.NewParseError(source, fmt.Errorf("no labeled fields found for %s", symbol))
	}

	return &out, nil
}

func (h *fundamentalsRepositoryHandler) fetchSnapshot(ctx context.Context, symbol string) (map[string]string, error) {
	source := "snapshot page " + symbol
	if err := waitLimiter(ctx, h.Limiter); err != nil {
		return nil, domain.NewTransportError(source, err)
	}

	url := fmt.Sprintf(h.ScrapeURL, symbol)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, domain.NewTransportError(source, err)
	}
	if h.UserAgent != "" {
		req.Header.Set("User-Agent", h.UserAgent)
	}

	response, err := h.HttpClient.Do(req)
	if err != nil {
		return nil, domain.NewTransportError(source, err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		io.Copy(io.Discard, response.Body)
		return nil, domain.NewTransportError(source, fmt.Errorf("failed with status code %d", response.StatusCode))
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(response.Body, 5*1024*1024))
	if err != nil {
		return nil, domain.NewParseError(source, fmt.Errorf("failed to parse html: %w", err))
	}

	return snapshotFields(doc), nil
}

// snapshotFields reads label/value pairs from the snapshot table,
// where cells alternate label, value, label, value
func snapshotFields(doc *goquery.Document) map[string]string {
	fields := map[string]string{}
	doc.Find("table.snapshot-table2 tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		for i := 0; i+1 < cells.Length(); i += 2 {
			label := strings.TrimSpace(cells.Eq(i).Text())
			value := strings.TrimSpace(cells.Eq(i + 1).Text())
			if label != "" {
				fields[label] = value
			}
		}
	})
	return fields
}

// parseLabeledNumber handles "23.45", "1,234.5" and "-" (missing)
func parseLabeledNumber(s string) *float64 {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	s = strings.TrimSuffix(s, "%")
	if s == "" || s == "-" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f <= 0 {
		return nil
	}
	return &f
}
