// Package notify delivers the best-effort thank-you email sent after a waitlist signup.
package notify

import (
	"context"
	"errors"
	"strings"
)

const (
	ProviderNone    = "none"
	ProviderEmailJS = "emailjs"
	ProviderSES     = "ses"
)

var ErrNoRecipient = errors.New("notify: message has no recipient")

// Message is a templated email. TemplateParams are provider template variables.
type Message struct {
	To             string
	TemplateParams map[string]string
}

func (m Message) validate() error {
	if strings.TrimSpace(m.To) == "" {
		return ErrNoRecipient
	}
	return nil
}

//go:generate mockgen -source=sender.go -destination=sender_mock_test.go -package=notify

type Sender interface {
	Name() string
	Send(ctx context.Context, msg Message) error
}

// NoopSender is used when no provider is configured.
type NoopSender struct{}

func (NoopSender) Name() string { return ProviderNone }

func (NoopSender) Send(_ context.Context, msg Message) error {
	return msg.validate()
}
