package httpclient

import (
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-hclog"

	"github.com/scan-io-git/hposcan/internal/config"
)

// HclogAdapter adapts an hclog.Logger to be compatible with the resty log.Logger interface.
type HclogAdapter struct {
	logger hclog.Logger
}

// NewHclogAdapter creates a new adapter that will forward messages to a hclog.Logger.
func NewHclogAdapter(logger hclog.Logger) resty.Logger {
	return &HclogAdapter{logger: logger}
}

// Errorf logs a message at error level.
func (a *HclogAdapter) Errorf(format string, v ...interface{}) {
	a.logger.Error(fmt.Sprintf(format, v...))
}

// Warnf logs a message at warning level.
func (a *HclogAdapter) Warnf(format string, v ...interface{}) {
	a.logger.Warn(fmt.Sprintf(format, v...))
}

// Debugf logs a message at debug level.
func (a *HclogAdapter) Debugf(format string, v ...interface{}) {
	a.logger.Debug(fmt.Sprintf(format, v...))
}

// InitializeRestyClient builds a resty client from the webhook section, falling back to defaults.
func InitializeRestyClient(logger hclog.Logger, webhook *config.Webhook) *resty.Client {
	client := resty.New()
	if logger != nil {
		client.SetLogger(NewHclogAdapter(logger))
	}

	restyConfig := applyWebhookConfig(webhook)
	client.
		SetDebug(restyConfig.Debug).
		SetRetryCount(restyConfig.RetryCount).
		SetRetryWaitTime(restyConfig.RetryWaitTime).
		SetRetryMaxWaitTime(restyConfig.RetryMaxWaitTime).
		SetTimeout(restyConfig.Timeout).
		SetTLSClientConfig(restyConfig.TLSClientConfig)
	if restyConfig.Proxy != "" {
		client.SetProxy(restyConfig.Proxy)
	}
	if webhook != nil && len(webhook.Headers) > 0 {
		client.SetHeaders(webhook.Headers)
	}

	return client
}

// applyWebhookConfig merges the webhook configuration over the resty defaults.
func applyWebhookConfig(webhook *config.Webhook) config.RestyHTTPClientConfig {
	cfg := config.DefaultRestyConfig()
	if webhook == nil {
		return cfg
	}

	cfg.Debug = config.GetBoolValue(webhook, "Debug", cfg.Debug)
	cfg.RetryCount = config.SetThen(webhook.RetryCount, cfg.RetryCount)
	cfg.RetryWaitTime = config.SetThen(webhook.RetryWaitTime, cfg.RetryWaitTime)
	cfg.RetryMaxWaitTime = config.SetThen(webhook.RetryMaxWaitTime, cfg.RetryMaxWaitTime)
	cfg.Timeout = config.SetThen(webhook.Timeout, cfg.Timeout)
	cfg.TLSClientConfig.InsecureSkipVerify = !config.GetBoolValue(webhook.TLSClientConfig, "Verify", true)

	if webhook.Proxy.Host != "" && webhook.Proxy.Port != 0 {
		cfg.Proxy = fmt.Sprintf("%s:%d", webhook.Proxy.Host, webhook.Proxy.Port)
	}
	return cfg
}
