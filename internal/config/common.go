package config

import (
	"crypto/tls"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/scan-io-git/hposcan/pkg/shared/files"
)

// Environment variables that override the configuration file.
const (
	EnvHome         = "HPOSCAN_HOME"
	EnvLogLevel     = "HPOSCAN_LOG_LEVEL"
	EnvCacheBackend = "HPOSCAN_CACHE_BACKEND"
	EnvCachePath    = "HPOSCAN_CACHE_PATH"
)

// BaseHTTPConfig holds common HTTP client configuration settings.
type BaseHTTPConfig struct {
	RetryCount       int           // Number of retries for failed requests
	RetryWaitTime    time.Duration // Wait time between retries
	RetryMaxWaitTime time.Duration // Maximum wait time for retries
	Timeout          time.Duration // Timeout for requests
	TLSClientConfig  *tls.Config   // TLS configuration
	Proxy            string        // Proxy address
}

// RestyHTTPClientConfig holds additional configuration settings for the Resty HTTP client.
type RestyHTTPClientConfig struct {
	BaseHTTPConfig
	Debug bool // Flag to enable Resty debug mode
}

// DefaultHTTPConfig returns a base configuration for HTTP clients with default values.
func DefaultHTTPConfig() BaseHTTPConfig {
	return BaseHTTPConfig{
		RetryCount:       3,
		RetryWaitTime:    1 * time.Second,
		RetryMaxWaitTime: 5 * time.Second,
		Timeout:          10 * time.Second,
		TLSClientConfig: &tls.Config{
			MinVersion:         tls.VersionTLS12, // Enforce a minimum TLS version
			InsecureSkipVerify: false,            // Ensure TLS certificates are verified
		},
		Proxy: "", // No proxy by default
	}
}

// DefaultRestyConfig returns a default configuration for the Resty HTTP client, extending the base HTTP configuration.
func DefaultRestyConfig() RestyHTTPClientConfig {
	return RestyHTTPClientConfig{
		BaseHTTPConfig: DefaultHTTPConfig(),
		Debug:          false,
	}
}

// GetHposcanHome returns the home folder, resolving it if validation has not run yet.
func GetHposcanHome(cfg *Config) string {
	if cfg != nil && cfg.Hposcan.HomeFolder != "" {
		return cfg.Hposcan.HomeFolder
	}
	home, err := resolveHome("")
	if err != nil {
		return ".hposcan"
	}
	return home
}

// GetCachePath returns the directory used by the persistent cache backend.
func GetCachePath(cfg *Config) string {
	if cfg != nil && cfg.Cache.Path != "" {
		return cfg.Cache.Path
	}
	return filepath.Join(GetHposcanHome(cfg), "cache")
}

// GetCacheTTL returns the configured verdict lifetime or the 24h default.
func GetCacheTTL(cfg *Config) time.Duration {
	if cfg == nil {
		return 24 * time.Hour
	}
	return SetThen(cfg.Cache.TTL, 24*time.Hour)
}

// resolveHome picks the home folder: the environment first, then the configured value, then ~/.hposcan.
func resolveHome(configured string) (string, error) {
	home := configured
	if env := os.Getenv(EnvHome); env != "" {
		home = env
	}
	if home == "" {
		userHome, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("unable to get user home folder: %w", err)
		}
		home = filepath.Join(userHome, ".hposcan")
	}
	return files.ExpandPath(home)
}
