package cmd

import (
	"context"
	"fmt"
	"net/http"

	"marketmood/internal/app"
	"marketmood/internal/logger"
	"marketmood/internal/repository"
	"marketmood/internal/service"
	"marketmood/internal/util"

	finance "github.com/piquette/finance-go"
	"golang.org/x/time/rate"
)

type Dependencies struct {
	Config            *util.Config
	HistoryRepository repository.HistoryRepository
	// nil when no brokerage credentials are configured
	PortfolioService    service.PortfolioService
	MarketReportHandler app.MarketReportHandler
}

func InitializeDependencies(ctx context.Context, configPath string) (*Dependencies, error) {
	log := logger.FromContext(ctx)

	cfg, err := util.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	secrets, err := util.LoadSecrets()
	if err != nil {
		return nil, fmt.Errorf("failed to load secrets: %w", err)
	}

	httpClient := &http.Client{
		Timeout: cfg.HTTP.Timeout,
	}
	finance.SetHTTPClient(httpClient)
	limiter := rate.NewLimiter(rate.Limit(cfg.HTTP.RequestsPerSecond), 1)

	historyRepository := repository.NewHistoryRepository(cfg.HistoryPath, log)
	priceRepository := repository.NewPriceRepository(limiter)
	optionsRepository := repository.NewOptionsRepository(limiter)
	newsRepository := repository.NewNewsRepository(httpClient, cfg.Sentiment.FeedURL, cfg.HTTP.UserAgent)
	sentimentCacheRepository := repository.NewSentimentCacheRepository(cfg.Sentiment.CachePath)
	positionRepository := repository.NewPositionRepository(cfg.Portfolio.PositionsPath)
	fundamentalsRepository := repository.NewFundamentalsRepository(repository.FundamentalsRepositoryOpts{
		HttpClient:  httpClient,
		Limiter:     limiter,
		ScrapeURL:   cfg.Fundamentals.ScrapeURL,
		UserAgent:   cfg.HTTP.UserAgent,
		CacheTTL:    cfg.Fundamentals.CacheTTL,
		CacheSize:   cfg.Fundamentals.CacheMaxEntries,
		MaxFailures: cfg.Fundamentals.MaxFailures,
		Logger:      log,
	})

	var gptRepository repository.GptRepository
	if cfg.Sentiment.Enabled && secrets.ChatGPTApiKey != "" {
		gptRepository, err = repository.NewGptRepository(secrets.ChatGPTApiKey)
		if err != nil {
			return nil, err
		}
	} else {
		log.Warn("headline scoring disabled, sentiment will use the cached or neutral value")
	}

	var alpacaRepository repository.AlpacaRepository
	var portfolioService service.PortfolioService
	if secrets.Alpaca.ApiKey != "" {
		alpacaRepository = repository.NewAlpacaRepository(secrets.Alpaca.ApiKey, secrets.Alpaca.ApiSecret, secrets.Alpaca.Endpoint)
		portfolioService = service.NewPortfolioService(
			alpacaRepository,
			positionRepository,
			fundamentalsRepository,
			cfg.Portfolio.DefaultTrailingStopPct,
		)
	} else {
		// positions can still be read from the local file
		portfolioService = service.NewPortfolioService(nil, positionRepository, fundamentalsRepository, cfg.Portfolio.DefaultTrailingStopPct)
	}

	var emailService service.EmailService
	if secrets.SES.Region != "" && secrets.SES.FromEmail != "" {
		emailRepository, err := repository.NewEmailRepository(ctx, secrets.SES.Region, secrets.SES.FromEmail)
		if err != nil {
			return nil, fmt.Errorf("failed to create email repository: %w", err)
		}
		emailService = service.NewEmailService(emailRepository, cfg.Email.Subject, cfg.Email.Recipients)
	}

	renderer, err := service.NewReportRenderer()
	if err != nil {
		return nil, err
	}

	return &Dependencies{
		Config:            cfg,
		HistoryRepository: historyRepository,
		PortfolioService:  portfolioService,
		MarketReportHandler: app.MarketReportHandler{
			IndicatorService: service.NewIndicatorService(
				priceRepository,
				optionsRepository,
				historyRepository,
				service.IndicatorServiceOpts{
					Volatility:        cfg.Symbols.Volatility,
					LongVolatility:    cfg.Symbols.LongVolatility,
					TailRisk:          cfg.Symbols.TailRisk,
					BondVolatility:    cfg.Symbols.BondVolatility,
					PutCall:           cfg.Symbols.PutCall,
					PutCallUnderlying: cfg.Symbols.PutCallUnderlying,
					Indices:           cfg.Symbols.Indices,
					LookbackDays:      cfg.LookbackDays,
					RetentionWindow:   cfg.RetentionWindow,
					SparklineLength:   cfg.SparklineLength,
				},
			),
			SentimentService:  service.NewSentimentService(newsRepository, gptRepository, sentimentCacheRepository, cfg.Sentiment.MaxHeadlines),
			ScoringService:    service.NewScoringService(cfg.Momentum.SmaWindow, cfg.Momentum.ReturnHorizon),
			PortfolioService:  portfolioService,
			ReportRenderer:    renderer,
			EmailService:      emailService,
			HistoryRepository: historyRepository,
			AlpacaRepository:  alpacaRepository,
			RetentionWindow:   cfg.RetentionWindow,
		},
	}, nil
}
