package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"marketmood/internal/domain"
	mock_repository "marketmood/internal/repository/mocks"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func Test_parseSentimentReply(t *testing.T) {
	type testCase struct {
		name        string
		reply       string
		wantScore   float64
		wantSummary string
	}
	for _, tc := range []testCase{
		{
			name:        "well formed",
			reply:       "SCORE: 72\nSUMMARY: Earnings beat and cooling inflation.",
			wantScore:   72,
			wantSummary: "Earnings beat and cooling inflation.",
		},
		{
			name:        "lower case and decimals",
			reply:       "score: 41.5\nsummary: **Mixed** signals",
			wantScore:   41.5,
			wantSummary: "**Mixed** signals",
		},
		{
			name:        "summary first",
			reply:       "SUMMARY: Risk off.\nSCORE: 20",
			wantScore:   20,
			wantSummary: "Risk off.",
		},
		{
			name:        "negative score clamps to zero",
			reply:       "SCORE: -5\nSUMMARY: Panic selling.",
			wantScore:   0,
			wantSummary: "Panic selling.",
		},
		{
			name:        "no score",
			reply:       "SUMMARY: Quiet day.",
			wantScore:   50,
			wantSummary: "Quiet day.",
		},
		{
			name:        "no tags at all",
			reply:       "I can't help with that.",
			wantScore:   50,
			wantSummary: defaultSentimentSummary,
		},
		{
			name:        "out of range",
			reply:       "SCORE: 140\nSUMMARY: Euphoria.",
			wantScore:   100,
			wantSummary: "Euphoria.",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			score, summary := parseSentimentReply(tc.reply)
			require.Equal(t, tc.wantScore, score)
			require.Equal(t, tc.wantSummary, summary)
		})
	}
}

func Test_sentimentServiceHandler_Get(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 6, 3, 21, 0, 0, 0, time.UTC)
	headlines := []domain.Headline{{Title: "Stocks rally"}}

	newHandler := func(ctrl *gomock.Controller) (*sentimentServiceHandler, *mock_repository.MockNewsRepository, *mock_repository.MockGptRepository, *mock_repository.MockSentimentCacheRepository) {
		news := mock_repository.NewMockNewsRepository(ctrl)
		gpt := mock_repository.NewMockGptRepository(ctrl)
		cache := mock_repository.NewMockSentimentCacheRepository(ctrl)
		handler := NewSentimentService(news, gpt, cache, 5).(*sentimentServiceHandler)
		handler.now = func() time.Time { return now }
		return handler, news, gpt, cache
	}

	t.Run("scores and caches", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		handler, news, gpt, cache := newHandler(ctrl)
		want := domain.Sentiment{
			Score:      66,
			Summary:    "Rally continues.",
			Headlines:  headlines,
			Provenance: domain.ProvenanceLive,
			AsOf:       now,
		}

		news.EXPECT().GetHeadlines(gomock.Any(), 5).Return(headlines, nil)
		gpt.EXPECT().ScoreHeadlines(gomock.Any(), headlines).Return("SCORE: 66\nSUMMARY: Rally continues.", nil)
		cache.EXPECT().Put(want).Return(nil)

		require.Equal(t, "", cmp.Diff(want, handler.Get(ctx)))
	})

	t.Run("completion failure without cache is neutral", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		handler, news, gpt, cache := newHandler(ctrl)

		news.EXPECT().GetHeadlines(gomock.Any(), 5).Return(headlines, nil)
		gpt.EXPECT().ScoreHeadlines(gomock.Any(), headlines).Return("", errors.New("rate limited"))
		cache.EXPECT().Get().Return(nil, nil)

		got := handler.Get(ctx)
		require.Equal(t, 50.0, got.Score)
		require.Equal(t, domain.ProvenanceDefault, got.Provenance)
		require.Equal(t, defaultSentimentSummary, got.Summary)
		require.True(t, got.Available())
	})

	t.Run("feed failure uses cache", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		handler, news, _, cache := newHandler(ctrl)

		news.EXPECT().GetHeadlines(gomock.Any(), 5).Return(nil, domain.NewTransportError("rss", errors.New("503")))
		cache.EXPECT().Get().Return(&domain.Sentiment{Score: 30, Summary: "Yesterday's news.", AsOf: now.AddDate(0, 0, -1)}, nil)

		got := handler.Get(ctx)
		require.Equal(t, 30.0, got.Score)
		require.Equal(t, "Yesterday's news.", got.Summary)
		require.Equal(t, domain.ProvenanceStale, got.Provenance)
	})

	t.Run("cache failure is not fatal", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		handler, news, gpt, cache := newHandler(ctrl)

		news.EXPECT().GetHeadlines(gomock.Any(), 5).Return(headlines, nil)
		gpt.EXPECT().ScoreHeadlines(gomock.Any(), headlines).Return("SCORE: 80", nil)
		cache.EXPECT().Put(gomock.Any()).Return(domain.NewPersistenceError("cache", errors.New("read-only")))

		got := handler.Get(ctx)
		require.Equal(t, 80.0, got.Score)
		require.Equal(t, domain.ProvenanceLive, got.Provenance)
	})

	t.Run("no completion client", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		handler, _, _, cache := newHandler(ctrl)
		handler.GptRepository = nil

		cache.EXPECT().Get().Return(nil, domain.NewParseError("cache", errors.New("bad json")))

		got := handler.Get(ctx)
		require.Equal(t, 50.0, got.Score)
		require.Equal(t, domain.ProvenanceDefault, got.Provenance)
	})
}
