package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSES struct {
	input *sesv2.SendEmailInput
	err   error
}

func (f *fakeSES) SendEmail(_ context.Context, params *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &sesv2.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func TestSESSender_BuildsSimpleMessage(t *testing.T) {
	api := &fakeSES{}
	sender := newSESSenderWithClient(SESConfig{FromAddress: "hello@heijo.app", FromName: "Heijo"}, api)

	err := sender.Send(context.Background(), Message{
		To:             "user@example.com",
		TemplateParams: map[string]string{"site_name": "Heijo"},
	})
	require.NoError(t, err)

	require.NotNil(t, api.input)
	assert.Equal(t, "Heijo <hello@heijo.app>", aws.ToString(api.input.FromEmailAddress))
	assert.Equal(t, []string{"user@example.com"}, api.input.Destination.ToAddresses)
	assert.Equal(t, "You're on the waitlist", aws.ToString(api.input.Content.Simple.Subject.Data))
	assert.Contains(t, aws.ToString(api.input.Content.Simple.Body.Text.Data), "Heijo waitlist")
}

func TestSESSender_WrapsProviderError(t *testing.T) {
	api := &fakeSES{err: errors.New("MessageRejected")}
	sender := newSESSenderWithClient(SESConfig{FromAddress: "hello@heijo.app"}, api)

	err := sender.Send(context.Background(), Message{To: "user@example.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MessageRejected")
	assert.Equal(t, ProviderSES, sender.Name())
}

func TestNewSESSender_RequiresFromAddress(t *testing.T) {
	_, err := NewSESSender(context.Background(), SESConfig{Region: "us-east-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SES_FROM_ADDRESS")
}
