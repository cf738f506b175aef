// Package notify forwards accepted candidates to an outreach workflow.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"screener/internal/config"
)

// EnvAPIKey holds the workflow API key.
const EnvAPIKey = "RETOOL_KEY"

const defaultTimeout = 10 * time.Second

// Message is one outreach e-mail.
type Message struct {
	Recipient string `json:"recipient"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
}

// Notifier delivers outreach messages. Delivery is best effort.
type Notifier interface {
	Notify(ctx context.Context, msg Message)
}

// Nop discards every message.
type Nop struct{}

// Notify does nothing.
func (Nop) Notify(context.Context, Message) {}

// HTTPDoer abstracts the HTTP client used for webhook calls.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Webhook posts messages to a workflow trigger URL.
type Webhook struct {
	URL     string
	APIKey  string
	Client  HTTPDoer
	Timeout time.Duration
	logger  *zap.Logger
}

// NewWebhook builds a webhook notifier.
func NewWebhook(url, apiKey string, client HTTPDoer, logger *zap.Logger) (*Webhook, error) {
	if strings.TrimSpace(url) == "" {
		return nil, fmt.Errorf("webhook url is required")
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("missing %s", EnvAPIKey)
	}
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Webhook{URL: url, APIKey: apiKey, Client: client, Timeout: defaultTimeout, logger: logger}, nil
}

// FromConfig returns the configured notifier, or Nop when CRM sync is off.
func FromConfig(controls config.CRMControls, logger *zap.Logger) (Notifier, error) {
	if !controls.Enabled {
		return Nop{}, nil
	}
	return NewWebhook(controls.WebhookURL, os.Getenv(EnvAPIKey), nil, logger)
}

// Notify posts msg and logs any failure.
func (w *Webhook) Notify(ctx context.Context, msg Message) {
	if err := w.Send(ctx, msg); err != nil {
		w.logger.Warn("outreach webhook failed", zap.String("recipient", msg.Recipient), zap.Error(err))
		return
	}
	w.logger.Info("outreach webhook sent", zap.String("recipient", msg.Recipient))
}

// Send posts msg and reports the outcome.
func (w *Webhook) Send(ctx context.Context, msg Message) error {
	if strings.TrimSpace(msg.Recipient) == "" {
		return fmt.Errorf("recipient is required")
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	if w.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.Timeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.URL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Workflow-Api-Key", w.APIKey)

	resp, err := w.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("webhook error %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
