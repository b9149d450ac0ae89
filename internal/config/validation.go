package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/scan-io-git/hposcan/pkg/shared/files"
)

var validLogLevels = map[string]bool{"": true, "TRACE": true, "DEBUG": true, "INFO": true, "WARN": true, "ERROR": true}

// ValidateConfig applies environment overrides and checks that every section has valid values.
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("YAML global config: configuration object is nil")
	}
	if err := updateHome(cfg); err != nil {
		return fmt.Errorf("YAML global config: hposcan directive is invalid: %w", err)
	}
	if err := ValidateLoggerConfig(&cfg.Logger); err != nil {
		return fmt.Errorf("YAML global config: logger directive is invalid: %w", err)
	}
	if err := ValidateScannerConfig(&cfg.Scanner); err != nil {
		return fmt.Errorf("YAML global config: scanner directive is invalid: %w", err)
	}
	if err := ValidateDetectorConfig(&cfg.Detector); err != nil {
		return fmt.Errorf("YAML global config: detector directive is invalid: %w", err)
	}
	if err := ValidateCacheConfig(cfg); err != nil {
		return fmt.Errorf("YAML global config: cache directive is invalid: %w", err)
	}
	if err := ValidateWebhookConfig(&cfg.Webhook); err != nil {
		return fmt.Errorf("YAML global config: webhook directive is invalid: %w", err)
	}
	if err := ValidateMetricsConfig(&cfg.Metrics); err != nil {
		return fmt.Errorf("YAML global config: metrics directive is invalid: %w", err)
	}
	return nil
}

// ValidateLoggerConfig checks the log level name.
func ValidateLoggerConfig(loggerConfig *Logger) error {
	if !validLogLevels[strings.ToUpper(loggerConfig.Level)] {
		return fmt.Errorf("unknown log level %q", loggerConfig.Level)
	}
	return nil
}

// ValidateScannerConfig checks the scan pipeline settings.
func ValidateScannerConfig(scannerConfig *Scanner) error {
	if scannerConfig.ContextWindow != nil {
		if err := validateRange(*scannerConfig.ContextWindow, "context_window", 0, 50); err != nil {
			return err
		}
	}
	if scannerConfig.ContextLines != nil {
		if err := validateRange(*scannerConfig.ContextLines, "context_lines", 0, 50); err != nil {
			return err
		}
	}
	if err := validateRange(scannerConfig.Workers, "workers", 0, 256); err != nil {
		return err
	}
	for _, ext := range scannerConfig.Extensions {
		if strings.TrimPrefix(strings.TrimSpace(ext), ".") == "" {
			return fmt.Errorf("extensions must not contain empty values")
		}
	}
	for _, prefix := range scannerConfig.CommentPrefixes {
		if strings.TrimSpace(prefix) == "" {
			return fmt.Errorf("comment_prefixes must not contain empty values")
		}
	}
	if scannerConfig.RulesFile != "" {
		expanded, err := files.ExpandPath(scannerConfig.RulesFile)
		if err != nil {
			return fmt.Errorf("failed to expand rules_file %q: %w", scannerConfig.RulesFile, err)
		}
		if err := files.ValidatePath(expanded); err != nil {
			return fmt.Errorf("rules_file is invalid: %w", err)
		}
		scannerConfig.RulesFile = expanded
	}
	return nil
}

// ValidateDetectorConfig checks that the declaration pattern compiles.
func ValidateDetectorConfig(detectorConfig *Detector) error {
	if detectorConfig.DeclarationPattern == "" {
		return nil
	}
	if _, err := regexp.Compile(detectorConfig.DeclarationPattern); err != nil {
		return fmt.Errorf("declaration_pattern does not compile: %w", err)
	}
	return nil
}

// ValidateCacheConfig applies cache environment overrides and checks the backend settings.
func ValidateCacheConfig(cfg *Config) error {
	cacheConfig := &cfg.Cache
	if backend := os.Getenv(EnvCacheBackend); backend != "" {
		cacheConfig.Backend = backend
	}
	if path := os.Getenv(EnvCachePath); path != "" {
		cacheConfig.Path = path
	}
	cacheConfig.Backend = strings.ToLower(cacheConfig.Backend)

	switch cacheConfig.Backend {
	case "", "memory", "badger":
	default:
		return fmt.Errorf("backend must be one of memory, badger: %q", cacheConfig.Backend)
	}

	if cacheConfig.Path != "" {
		expanded, err := files.ExpandPath(cacheConfig.Path)
		if err != nil {
			return fmt.Errorf("failed to expand path %q: %w", cacheConfig.Path, err)
		}
		cacheConfig.Path = expanded
	}
	if cacheConfig.Size < 0 {
		return fmt.Errorf("size must not be negative: %d", cacheConfig.Size)
	}
	if err := validateDuration(cacheConfig.TTL, "ttl", 30*24*time.Hour); err != nil {
		return err
	}
	if err := validateDuration(cacheConfig.GCInterval, "gc_interval", 24*time.Hour); err != nil {
		return err
	}
	return nil
}

// ValidateWebhookConfig checks the webhook HTTP client settings.
func ValidateWebhookConfig(webhookConfig *Webhook) error {
	if webhookConfig == nil {
		return fmt.Errorf("webhook configuration is nil")
	}
	if webhookConfig.URL != "" {
		u, err := url.Parse(webhookConfig.URL)
		if err != nil {
			return fmt.Errorf("invalid url: %w", err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("url scheme must be http or https: %q", webhookConfig.URL)
		}
	}
	if webhookConfig.RetryCount < 0 || webhookConfig.RetryCount > 20 {
		return fmt.Errorf("retry_count must be between 0 and 20: %d", webhookConfig.RetryCount)
	}

	durations := map[string]time.Duration{
		"RetryMaxWaitTime": webhookConfig.RetryMaxWaitTime,
		"RetryWaitTime":    webhookConfig.RetryWaitTime,
		"Timeout":          webhookConfig.Timeout,
	}
	for name, duration := range durations {
		if err := validateDuration(duration, name, 100*time.Second); err != nil {
			return err
		}
	}

	if err := validateProxy(&webhookConfig.Proxy); err != nil {
		return err
	}
	return nil
}

// ValidateMetricsConfig checks the metrics listen address.
func ValidateMetricsConfig(metricsConfig *Metrics) error {
	if metricsConfig.Listen == "" {
		return nil
	}
	if _, _, err := net.SplitHostPort(metricsConfig.Listen); err != nil {
		return fmt.Errorf("invalid listen address %q: %w", metricsConfig.Listen, err)
	}
	return nil
}

// validateDuration checks that a time.Duration is valid and within a specified maximum duration.
func validateDuration(d time.Duration, name string, max time.Duration) error {
	if d < 0 {
		return fmt.Errorf("invalid duration for %q: %v cannot be negative", name, d)
	}
	if d > max {
		return fmt.Errorf("%q duration is too long: %v exceeds maximum of %v", name, d, max)
	}
	return nil
}

func validateRange(v int, name string, min, max int) error {
	if v < min || v > max {
		return fmt.Errorf("%s must be between %d and %d: %d", name, min, max, v)
	}
	return nil
}

// validateProxy checks if the given Proxy settings are valid.
func validateProxy(proxy *Proxy) error {
	if proxy == nil {
		return fmt.Errorf("proxy configuration is nil")
	}

	// If host or port is not set, skip further validation
	if proxy.Host == "" || proxy.Port == 0 {
		return nil
	}

	if err := validateHost(&proxy.Host); err != nil {
		return err
	}
	return validatePort(proxy.Port)
}

// validateHost ensures the host includes a scheme; adds "http" if missing.
func validateHost(host *string) error {
	if host == nil {
		return fmt.Errorf("host string pointer is nil")
	}

	if !strings.Contains(*host, "://") {
		*host = "http://" + *host
	}
	*host = strings.TrimRight(*host, "/")

	if _, err := url.Parse(*host); err != nil {
		return fmt.Errorf("invalid host URL: %w", err)
	}
	return nil
}

// validatePort checks if the port part of the proxy configuration is valid.
func validatePort(port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", port)
	}
	return nil
}

// updateHome sets the home folder from the environment, the config file or the default.
func updateHome(cfg *Config) error {
	home, err := resolveHome(cfg.Hposcan.HomeFolder)
	if err != nil {
		return err
	}
	cfg.Hposcan.HomeFolder = home
	return nil
}
