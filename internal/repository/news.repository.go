package repository

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"

	"marketmood/internal/domain"
)

//go:generate mockgen -source=news.repository.go -destination=mocks/mock_news.repository.go

type NewsRepository interface {
	// GetHeadlines returns up to max items from the configured feed,
	// in feed order
	GetHeadlines(ctx context.Context, max int) ([]domain.Headline, error)
}

type rssFeed struct {
	Channel struct {
		Items []struct {
			Title       string `xml:"title"`
			Description string `xml:"description"`
			Link        string `xml:"link"`
		} `xml:"item"`
	} `xml:"channel"`
}

type rssNewsRepositoryHandler struct {
	HttpClient *http.Client
	FeedURL    string
	UserAgent  string
}

func NewNewsRepository(httpClient *http.Client, feedURL, userAgent string) NewsRepository {
	return rssNewsRepositoryHandler{
		HttpClient: httpClient,
		FeedURL:    feedURL,
		UserAgent:  userAgent,
	}
}

func (h rssNewsRepositoryHandler) GetHeadlines(ctx context.Context, max int) ([]domain.Headline, error) {
	source := "news feed"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.FeedURL, nil)
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

	responseBytes, err := io.ReadAll(io.LimitReader(response.Body, 5*1024*1024))
	if err != nil {
		return nil, domain.NewTransportError(source, fmt.Errorf("received status code %d and failed to read body: %w", response.StatusCode, err))
	}
	if response.StatusCode != http.StatusOK {
		return nil, domain.NewTransportError(source, fmt.Errorf("failed with status code %d", response.StatusCode))
	}

	feed := rssFeed{}
	if err := xml.Unmarshal(responseBytes, &feed); err != nil {
		return nil, domain.NewParseError(source, fmt.Errorf("failed to decode rss: %w", err))
	}

	out := []domain.Headline{}
	for _, item := range feed.Channel.Items {
		title := strings.TrimSpace(item.Title)
		if title == "" {
			continue
		}
		out = append(out, domain.Headline{
			Title:       title,
			Description: strings.TrimSpace(item.Description),
			Link:        strings.TrimSpace(item.Link),
		})
		if len(out) >= max {
			break
		}
	}
	if len(out) == 0 {
		return nil, domain.NewInsufficientDataError(source, fmt.Errorf("feed has no headlines"))
	}

	return out, nil
}
