// Package notify delivers scan and refresh results to external listeners.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-hclog"

	"github.com/scan-io-git/hposcan/internal/config"
	"github.com/scan-io-git/hposcan/internal/httpclient"
	"github.com/scan-io-git/hposcan/internal/scanner"
	"github.com/scan-io-git/hposcan/internal/service"
)

// Event names sent in the X-Hposcan-Event header.
const (
	EventScanCompleted  = "scan_completed"
	EventCacheRefreshed = "cache_refreshed"
)

// Payload is the JSON body posted to the webhook.
type Payload struct {
	Event   string      `json:"event"`
	SentAt  time.Time   `json:"sent_at"`
	Payload interface{} `json:"payload"`
}

// Webhook posts results to a configured URL. Delivery failures are logged and never returned.
type Webhook struct {
	url    string
	client *resty.Client
	logger hclog.Logger
}

// NewWebhook builds a webhook observer from the webhook configuration section.
func NewWebhook(cfg *config.Webhook, logger hclog.Logger) (*Webhook, error) {
	if cfg == nil || cfg.URL == "" {
		return nil, fmt.Errorf("webhook url is not configured")
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Webhook{
		url:    cfg.URL,
		client: httpclient.InitializeRestyClient(logger, cfg),
		logger: logger,
	}, nil
}

func (w *Webhook) ScanCompleted(ctx context.Context, result *scanner.ScanResult) {
	w.send(ctx, EventScanCompleted, result)
}

func (w *Webhook) CacheRefreshed(ctx context.Context, result service.RefreshResult) {
	w.send(ctx, EventCacheRefreshed, result)
}

func (w *Webhook) send(ctx context.Context, event string, body interface{}) {
	resp, err := w.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("X-Hposcan-Event", event).
		SetBody(Payload{Event: event, SentAt: time.Now().UTC(), Payload: body}).
		Post(w.url)
	if err != nil {
		w.logger.Error("failed to deliver webhook", "event", event, "url", w.url, "error", err)
		return
	}
	if resp.IsError() {
		w.logger.Error("webhook rejected", "event", event, "url", w.url, "status", resp.StatusCode())
		return
	}
	w.logger.Debug("webhook delivered", "event", event, "status", resp.StatusCode())
}
