package app

import (
	"context"
	"fmt"
	"time"

	"marketmood/internal/domain"
	"marketmood/internal/logger"
	"marketmood/internal/repository"
	"marketmood/internal/service"
)

// MarketReportHandler runs one end to end report. PortfolioService,
// AlpacaRepository and EmailService are optional.
type MarketReportHandler struct {
	IndicatorService  service.IndicatorService
	SentimentService  service.SentimentService
	ScoringService    service.ScoringService
	PortfolioService  service.PortfolioService
	ReportRenderer    service.ReportRenderer
	EmailService      service.EmailService
	HistoryRepository repository.HistoryRepository
	AlpacaRepository  repository.AlpacaRepository
	RetentionWindow   int

	now func() time.Time
}

type ReportOptions struct {
	SkipPositions bool
	Email         bool
}

type ReportResult struct {
	Report domain.Report
	HTML   string
}

func (h MarketReportHandler) clock() time.Time {
	if h.now != nil {
		return h.now()
	}
	return time.Now()
}

// Run fetches, scores and renders. Only a rendering failure is
// returned as an error; everything upstream degrades to neutral
// values and is logged.
func (h MarketReportHandler) Run(ctx context.Context, opts ReportOptions) (*ReportResult, error) {
	profile, _ := domain.GetProfile(ctx)
	log := logger.FromContext(ctx)

	generatedAt := h.clock()
	today := domain.DateKey(generatedAt)

	indicators := h.IndicatorService.FetchAll(ctx)
	indicators = h.IndicatorService.Record(ctx, indicators)

	sentiment := h.SentimentService.Get(ctx)
	if sentiment.Provenance == domain.ProvenanceLive {
		if err := h.HistoryRepository.Append(domain.IndicatorSentiment, today, sentiment.Score); err != nil {
			log.Warnf("failed to record sentiment: %v", err)
		}
	}

	_, endSpan := profile.StartNewSpan("score")
	score := h.ScoringService.Score(indicators, sentiment)
	endSpan()
	if err := h.HistoryRepository.Append(domain.IndicatorMood, today, score.Score); err != nil {
		log.Warnf("failed to record mood score: %v", err)
	}

	if err := h.HistoryRepository.Save(); err != nil {
		log.Warnf("failed to save history, continuing with in-memory values (%s): %v", domain.KindOf(err), err)
	}

	report := domain.Report{
		GeneratedAt:      generatedAt,
		Score:            score,
		Indicators:       indicators,
		Sentiment:        sentiment,
		MoodHistory:      h.HistoryRepository.Window(domain.IndicatorMood, h.RetentionWindow),
		SentimentHistory: h.HistoryRepository.Window(domain.IndicatorSentiment, h.RetentionWindow),
		Positions:        []domain.PortfolioPosition{},
	}

	if !opts.SkipPositions && h.PortfolioService != nil {
		positions, err := h.PortfolioService.Positions(ctx)
		if err != nil {
			log.Warnf("failed to load positions: %v", err)
		} else {
			report.Positions = positions
		}
	}

	if h.AlpacaRepository != nil {
		open, err := h.AlpacaRepository.IsMarketOpen()
		if err != nil {
			log.Warnf("failed to get market clock: %v", err)
		} else {
			report.MarketOpen = &open
		}
	}

	_, endSpan = profile.StartNewSpan("render")
	html, err := h.ReportRenderer.Render(report)
	endSpan()
	if err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}

	log.Infof(
		"market mood %.1f (%s) from %d factor(s), total weight %.2f",
		score.Score,
		score.Verdict.Label,
		len(score.Factors),
		score.TotalWeight,
	)

	if opts.Email {
		if h.EmailService == nil {
			log.Warn("email requested but delivery is not configured")
		} else if err := h.EmailService.SendReport(ctx, report, html); err != nil {
			log.Warnf("failed to email report: %v", err)
		}
	}

	return &ReportResult{
		Report: report,
		HTML:   html,
	}, nil
}
