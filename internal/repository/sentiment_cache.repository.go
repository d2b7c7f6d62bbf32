package repository

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"marketmood/internal/domain"
)

//go:generate mockgen -source=sentiment_cache.repository.go -destination=mocks/mock_sentiment_cache.repository.go

// SentimentCacheRepository keeps the last successful sentiment
// assessment so a later run can reuse it when the model is down.
type SentimentCacheRepository interface {
	// Get returns nil, nil when nothing has been cached yet
	Get() (*domain.Sentiment, error)
	Put(s domain.Sentiment) error
}

type sentimentCacheRepositoryHandler struct {
	Path string
}

func NewSentimentCacheRepository(path string) SentimentCacheRepository {
	return sentimentCacheRepositoryHandler{
		Path: path,
	}
}

func (h sentimentCacheRepositoryHandler) Get() (*domain.Sentiment, error) {
	b, err := os.ReadFile(h.Path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.NewPersistenceError(h.Path, err)
	}

	out := domain.Sentiment{}
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, domain.NewParseError(h.Path, fmt.Errorf("failed to parse sentiment cache: %w", err))
	}
	return &out, nil
}

func (h sentimentCacheRepositoryHandler) Put(s domain.Sentiment) error {
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return domain.NewPersistenceError(h.Path, err)
	}
	if err := os.MkdirAll(filepath.Dir(h.Path), 0755); err != nil {
		return domain.NewPersistenceError(h.Path, err)
	}
	if err := os.WriteFile(h.Path, b, 0644); err != nil {
		return domain.NewPersistenceError(h.Path, fmt.Errorf("failed to write sentiment cache: %w", err))
	}
	return nil
}
