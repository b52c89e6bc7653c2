// Package notify posts cycle outcomes to a chat webhook.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/JakeFAU/instascrape/internal/profile"
)

const defaultTimeout = 15 * time.Second

// Config controls the webhook client.
type Config struct {
	URL       string
	UserAgent string
	Timeout   time.Duration
}

// Webhook implements profile.Notifier with a single JSON POST per message.
type Webhook struct {
	url    string
	client *resty.Client
}

type payload struct {
	Content string `json:"content"`
}

// NewWebhook builds a Webhook with its own HTTP client.
func NewWebhook(cfg Config) *Webhook {
	if cfg.UserAgent == "" {
		cfg.UserAgent = profile.DefaultUserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", cfg.UserAgent).
		SetHeader("Content-Type", "application/json")
	return &Webhook{url: cfg.URL, client: client}
}

// Notify posts {"content": message}. Any transport error or non-2xx status
// is reported as profile.NotificationSendFailed.
func (w *Webhook) Notify(ctx context.Context, message string) error {
	res, err := w.client.R().
		SetContext(ctx).
		SetBody(payload{Content: message}).
		Post(w.url)
	if err != nil {
		return fmt.Errorf("%w: %w", profile.NotificationSendFailed, err)
	}
	if !res.IsSuccess() {
		return fmt.Errorf("%w: status %d", profile.NotificationSendFailed, res.StatusCode())
	}
	return nil
}
