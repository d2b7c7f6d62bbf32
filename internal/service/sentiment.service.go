package service

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"marketmood/internal/domain"
	"marketmood/internal/logger"
	"marketmood/internal/repository"
)

const defaultSentimentSummary = "No headline summary is available."

var (
	scorePattern   = regexp.MustCompile(`(?i)SCORE:\s*([-+]?\d+(?:\.\d+)?)`)
	summaryPattern = regexp.MustCompile(`(?is)SUMMARY:\s*(.+)`)
)

// SentimentService scores recent headlines. Get never fails; when no
// score can be produced it returns the cached one or a neutral 50.
type SentimentService interface {
	Get(ctx context.Context) domain.Sentiment
}

type sentimentServiceHandler struct {
	NewsRepository           repository.NewsRepository
	GptRepository            repository.GptRepository
	SentimentCacheRepository repository.SentimentCacheRepository
	MaxHeadlines             int

	now func() time.Time
}

// NewSentimentService takes a nil gptRepository when scoring is
// disabled or no API key is configured.
func NewSentimentService(
	newsRepository repository.NewsRepository,
	gptRepository repository.GptRepository,
	sentimentCacheRepository repository.SentimentCacheRepository,
	maxHeadlines int,
) SentimentService {
	return &sentimentServiceHandler{
		NewsRepository:           newsRepository,
		GptRepository:            gptRepository,
		SentimentCacheRepository: sentimentCacheRepository,
		MaxHeadlines:             maxHeadlines,
		now:                      time.Now,
	}
}

// parseSentimentReply reads a "SCORE: n / SUMMARY: text" reply. A
// missing score is neutral and a missing summary gets a placeholder.
func parseSentimentReply(reply string) (float64, string) {
	score := neutralScore
	if m := scorePattern.FindStringSubmatch(reply); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			score = clampScore(v)
		}
	}

	summary := defaultSentimentSummary
	if m := summaryPattern.FindStringSubmatch(reply); m != nil {
		// SCORE may follow SUMMARY
		text := scorePattern.ReplaceAllString(m[1], "")
		if text = strings.TrimSpace(text); text != "" {
			summary = text
		}
	}

	return score, summary
}

func (h *sentimentServiceHandler) Get(ctx context.Context) domain.Sentiment {
	profile, _ := domain.GetProfile(ctx)
	_, endSpan := profile.StartNewSpan("sentiment")
	defer endSpan()

	log := logger.FromContext(ctx)

	sentiment, err := h.score(ctx)
	if err == nil {
		if err := h.SentimentCacheRepository.Put(*sentiment); err != nil {
			log.Warnf("failed to cache sentiment: %v", err)
		}
		return *sentiment
	}
	log.Warnf("failed to score headlines (%s): %v", domain.KindOf(err), err)

	cached, cacheErr := h.SentimentCacheRepository.Get()
	if cacheErr != nil {
		log.Warnf("failed to read cached sentiment: %v", cacheErr)
	}
	if cached != nil {
		cached.Provenance = domain.ProvenanceStale
		cached.Score = clampScore(cached.Score)
		return *cached
	}

	return domain.Sentiment{
		Score:      neutralScore,
		Summary:    defaultSentimentSummary,
		Headlines:  []domain.Headline{},
		Provenance: domain.ProvenanceDefault,
		AsOf:       h.now(),
	}
}

func (h *sentimentServiceHandler) score(ctx context.Context) (*domain.Sentiment, error) {
	if h.GptRepository == nil {
		return nil, domain.NewInsufficientDataError("sentiment", fmt.Errorf("headline scoring is not configured"))
	}

	headlines, err := h.NewsRepository.GetHeadlines(ctx, h.MaxHeadlines)
	if err != nil {
		return nil, fmt.Errorf("failed to get headlines: %w", err)
	}

	reply, err := h.GptRepository.ScoreHeadlines(ctx, headlines)
	if err != nil {
		return nil, fmt.Errorf("failed to score headlines: %w", err)
	}

	score, summary := parseSentimentReply(reply)
	return &domain.Sentiment{
		Score:      score,
		Summary:    summary,
		Headlines:  headlines,
		Provenance: domain.ProvenanceLive,
		AsOf:       h.now(),
	}, nil
}
