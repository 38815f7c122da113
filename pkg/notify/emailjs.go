package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type EmailJSConfig struct {
	Endpoint   string
	ServiceID  string
	TemplateID string
	PublicKey  string
	// PrivateKey is sent as accessToken; required when the account enforces strict mode.
	PrivateKey string
}

func (c EmailJSConfig) Missing() []string {
	var missing []string
	if strings.TrimSpace(c.ServiceID) == "" {
		missing = append(missing, "EMAILJS_SERVICE_ID")
	}
	if strings.TrimSpace(c.TemplateID) == "" {
		missing = append(missing, "EMAILJS_TEMPLATE_ID")
	}
	if strings.TrimSpace(c.PublicKey) == "" {
		missing = append(missing, "EMAILJS_PUBLIC_KEY")
	}
	return missing
}

type emailJSRequest struct {
	ServiceID      string            `json:"service_id"`
	TemplateID     string            `json:"template_id"`
	UserID         string            `json:"user_id"`
	AccessToken    string            `json:"accessToken,omitempty"`
	TemplateParams map[string]string `json:"template_params"`
}

// EmailJSSender posts to the EmailJS REST send endpoint.
type EmailJSSender struct {
	config EmailJSConfig
	client *http.Client
}

func NewEmailJSSender(config EmailJSConfig, client *http.Client) (*EmailJSSender, error) {
	if missing := config.Missing(); len(missing) > 0 {
		return nil, fmt.Errorf("emailjs: missing configuration: %s", strings.Join(missing, ", "))
	}
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}

	return &EmailJSSender{config: config, client: client}, nil
}

func (s *EmailJSSender) Name() string { return ProviderEmailJS }

func (s *EmailJSSender) Send(ctx context.Context, msg Message) error {
	if err := msg.validate(); err != nil {
		return err
	}

	params := make(map[string]string, len(msg.TemplateParams)+1)
	for k, v := range msg.TemplateParams {
		params[k] = v
	}
	params["to_email"] = msg.To

	body, err := json.Marshal(emailJSRequest{
		ServiceID:      s.config.ServiceID,
		TemplateID:     s.config.TemplateID,
		UserID:         s.config.PublicKey,
		AccessToken:    s.config.PrivateKey,
		TemplateParams: params,
	})
	if err != nil {
		return fmt.Errorf("emailjs: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.Endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("emailjs: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("emailjs: send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("emailjs: status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
