package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

type SESConfig struct {
	Region      string
	FromAddress string
	FromName    string
	Subject     string
	// Static credentials are optional; the default AWS chain is used when empty.
	AccessKeyID     string
	SecretAccessKey string
}

func (c SESConfig) Missing() []string {
	if strings.TrimSpace(c.FromAddress) == "" {
		return []string{"SES_FROM_ADDRESS"}
	}
	return nil
}

type sesAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESSender sends a plain-text thank-you email through AWS SES v2.
type SESSender struct {
	config SESConfig
	client sesAPI
}

func NewSESSender(ctx context.Context, config SESConfig) (*SESSender, error) {
	if missing := config.Missing(); len(missing) > 0 {
		return nil, fmt.Errorf("ses: missing configuration: %s", strings.Join(missing, ", "))
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(config.Region)}
	if config.AccessKeyID != "" && config.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(config.AccessKeyID, config.SecretAccessKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("ses: load aws config: %w", err)
	}

	return newSESSenderWithClient(config, sesv2.NewFromConfig(cfg)), nil
}

func newSESSenderWithClient(config SESConfig, client sesAPI) *SESSender {
	if config.Subject == "" {
		config.Subject = "You're on the waitlist"
	}
	return &SESSender{config: config, client: client}
}

func (s *SESSender) Name() string { return ProviderSES }

func (s *SESSender) Send(ctx context.Context, msg Message) error {
	if err := msg.validate(); err != nil {
		return err
	}

	from := s.config.FromAddress
	if s.config.FromName != "" {
		from = fmt.Sprintf("%s <%s>", s.config.FromName, s.config.FromAddress)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(from),
		Destination:      &types.Destination{ToAddresses: []string{msg.To}},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(s.config.Subject), Charset: aws.String("UTF-8")},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(renderThankYou(msg)), Charset: aws.String("UTF-8")},
				},
			},
		},
	}

	if _, err := s.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("ses: send: %w", err)
	}

	return nil
}

func renderThankYou(msg Message) string {
	site := msg.TemplateParams["site_name"]
	if site == "" {
		site = "our"
	}

	return fmt.Sprintf("Thanks for joining the %s waitlist.\n\nWe'll write to %s as soon as there is something to share.\n", site, msg.To)
}
