package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/stretchr/testify/require"
)

type fakeSES struct {
	input *sesv2.SendEmailInput
	err   error
}

func (f *fakeSES) SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &sesv2.SendEmailOutput{MessageId: aws.String("abc")}, nil
}

func Test_emailRepositoryHandler_SendEmail(t *testing.T) {
	ctx := context.Background()

	t.Run("sends html body to all recipients", func(t *testing.T) {
		ses := &fakeSES{}
		handler := &emailRepositoryHandler{sesClient: ses, fromEmail: "mood@example.com"}

		err := handler.SendEmail(ctx, []string{"a@example.com", "b@example.com"}, "Market mood", "<p>hi</p>")
		require.NoError(t, err)
		require.Equal(t, []string{"a@example.com", "b@example.com"}, ses.input.Destination.ToAddresses)
		require.Equal(t, "mood@example.com", *ses.input.FromEmailAddress)
		require.Equal(t, "<p>hi</p>", *ses.input.Content.Simple.Body.Html.Data)
		require.Equal(t, "Market mood", *ses.input.Content.Simple.Subject.Data)
	})

	t.Run("no recipients", func(t *testing.T) {
		ses := &fakeSES{}
		handler := &emailRepositoryHandler{sesClient: ses, fromEmail: "mood@example.com"}

		require.Error(t, handler.SendEmail(ctx, nil, "s", "b"))
		require.Nil(t, ses.input)
	})

	t.Run("ses failure", func(t *testing.T) {
		handler := &emailRepositoryHandler{sesClient: &fakeSES{err: errors.New("throttled")}, fromEmail: "mood@example.com"}

		err := handler.SendEmail(ctx, []string{"a@example.com"}, "s", "b")
		require.ErrorContains(t, err, "throttled")
	})
}
