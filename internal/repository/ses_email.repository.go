package repository

import (
	"context"
	"fmt"

	"marketmood/internal/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

//go:generate mockgen -source=ses_email.repository.go -destination=mocks/mock_ses_email.repository.go

// EmailRepository sends an already rendered HTML body. It knows
// nothing about the report layout.
type EmailRepository interface {
	SendEmail(ctx context.Context, to []string, subject string, body string) error
}

type sesAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

type emailRepositoryHandler struct {
	sesClient sesAPI
	fromEmail string
}

// NewEmailRepository loads AWS credentials from the default chain.
func NewEmailRepository(ctx context.Context, region, fromEmail string) (EmailRepository, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &emailRepositoryHandler{
		sesClient: sesv2.NewFromConfig(cfg),
		fromEmail: fromEmail,
	}, nil
}

func (h *emailRepositoryHandler) SendEmail(ctx context.Context, to []string, subject string, body string) error {
	if len(to) == 0 {
		return fmt.Errorf("no recipients")
	}
	if h.fromEmail == "" {
		return fmt.Errorf("sender address is not configured")
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(h.fromEmail),
		Destination: &types.Destination{
			ToAddresses: to,
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Html: &types.Content{
						Data:    aws.String(body),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	result, err := h.sesClient.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send email via SES: %w", err)
	}

	if result.MessageId != nil {
		logger.FromContext(ctx).Infof("sent report to %d recipient(s), message id %s", len(to), *result.MessageId)
	}

	return nil
}
