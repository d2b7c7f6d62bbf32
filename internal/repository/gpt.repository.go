package repository

import (
	"context"
	"fmt"
	"strings"

	"marketmood/internal/domain"

	"github.com/ayush6624/go-chatgpt"
)

//go:generate mockgen -source=gpt.repository.go -destination=mocks/mock_gpt.repository.go

type GptRepository interface {
	// ScoreHeadlines asks the model for a sentiment score and summary
	// and returns its raw reply, which should follow headlinePrompt's
	// SCORE:/SUMMARY: format but is not guaranteed to.
	ScoreHeadlines(ctx context.Context, headlines []domain.Headline) (string, error)
}

type gptRepositoryHandler struct {
	GptClient *chatgpt.Client
}

func NewGptRepository(apiKey string) (GptRepository, error) {
	client, err := chatgpt.NewClient(apiKey)
	if err != nil {
		return nil, fmt.Errorf("failed to construct gpt client: %w", err)
	}

	return gptRepositoryHandler{
		GptClient: client,
	}, nil
}

const headlinePrompt = `
You are a market analyst. You will be given a list of recent financial news headlines, each with a short description. Judge the overall sentiment these headlines imply for the US stock market over the next few sessions.

Answer with exactly two lines and nothing else:

SCORE: <integer from 0 to 100, where 0 is extremely bearish, 50 is neutral and 100 is extremely bullish>
SUMMARY: <two or three sentences explaining the score, in markdown>

example:
SCORE: 62
SUMMARY: Cooling inflation data and strong earnings outweigh **geopolitical** worries.
`

func formatHeadlines(headlines []domain.Headline) string {
	lines := []string{}
	for i, h := range headlines {
		line := fmt.Sprintf("%d. %s", i+1, h.Title)
		if h.Description != "" {
			line += " - " + h.Description
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (h gptRepositoryHandler) ScoreHeadlines(ctx context.Context, headlines []domain.Headline) (string, error) {
	source := "chatgpt"
	if len(headlines) == 0 {
		return "", domain.NewInsufficientDataError(source, fmt.Errorf("no headlines to score"))
	}

	res, err := h.GptClient.Send(ctx, &chatgpt.ChatCompletionRequest{
		Model: chatgpt.GPT35Turbo,
		Messages: []chatgpt.ChatMessage{
			{
				Role:    chatgpt.ChatGPTModelRoleSystem,
				Content: headlinePrompt,
			},
			{
				Role:    chatgpt.ChatGPTModelRoleUser,
				Content: formatHeadlines(headlines),
			},
		},
	})
	if err != nil {
		return "", domain.NewTransportError(source, fmt.Errorf("failed to score headlines: %w", err))
	}
	if res == nil || len(res.Choices) == 0 {
		return "", domain.NewParseError(source, fmt.Errorf("completion had no choices"))
	}

	return res.Choices[0].Message.Content, nil
}
