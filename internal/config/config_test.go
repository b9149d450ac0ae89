package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `logger:
  level: debug
  json_format: true
scanner:
  extensions: [php, inc]
  context_window: 5
  workers: 4
cache:
  backend: badger
  path: /tmp/hposcan-cache
  ttl: 12h
webhook:
  url: https://hooks.example.com/hpos
  timeout: 5s
  headers:
    X-Token: abc
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.True(t, GetBoolValue(cfg, "Logger.JSONFormat", false))
	assert.True(t, GetBoolValue(cfg, "Logger.DisableTime", true))
	assert.Equal(t, []string{"php", "inc"}, cfg.Scanner.Extensions)
	require.NotNil(t, cfg.Scanner.ContextWindow)
	assert.Equal(t, 5, *cfg.Scanner.ContextWindow)
	assert.Nil(t, cfg.Scanner.ContextLines)
	assert.Equal(t, 12*time.Hour, cfg.Cache.TTL)
	assert.Equal(t, 5*time.Second, cfg.Webhook.Timeout)
	assert.Equal(t, "abc", cfg.Webhook.Headers["X-Token"])
}

func TestLoadConfigUnknownField(t *testing.T) {
	path := writeConfig(t, "scanner:\n  unknown: 1\n")
	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfigEmptyFile(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, &Config{}, cfg)
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}

func TestLoadConfigDirectory(t *testing.T) {
	_, err := LoadConfig(t.TempDir())
	assert.ErrorContains(t, err, "is a directory, not a file")
}

func TestValidateConfigEnvOverrides(t *testing.T) {
	home := t.TempDir()
	t.Setenv(EnvHome, home)
	t.Setenv(EnvCacheBackend, "BADGER")
	t.Setenv(EnvCachePath, filepath.Join(home, "db"))

	cfg := &Config{}
	require.NoError(t, ValidateConfig(cfg))

	assert.Equal(t, home, cfg.Hposcan.HomeFolder)
	assert.Equal(t, "badger", cfg.Cache.Backend)
	assert.Equal(t, filepath.Join(home, "db"), GetCachePath(cfg))
	assert.Equal(t, 24*time.Hour, GetCacheTTL(cfg))
}

func TestGetCachePathDefaultsUnderHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv(EnvHome, home)
	t.Setenv(EnvCachePath, "")
	t.Setenv(EnvCacheBackend, "")

	cfg := &Config{}
	require.NoError(t, ValidateConfig(cfg))
	assert.Equal(t, filepath.Join(home, "cache"), GetCachePath(cfg))
}

func TestValidateConfigErrors(t *testing.T) {
	t.Setenv(EnvHome, t.TempDir())
	t.Setenv(EnvCacheBackend, "")
	t.Setenv(EnvCachePath, "")

	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name:    "unknown log level",
			cfg:     Config{Logger: Logger{Level: "verbose"}},
			wantErr: `YAML global config: logger directive is invalid: unknown log level "verbose"`,
		},
		{
			name:    "too many workers",
			cfg:     Config{Scanner: Scanner{Workers: 1000}},
			wantErr: "YAML global config: scanner directive is invalid: workers must be between 0 and 256: 1000",
		},
		{
			name:    "negative context window",
			cfg:     Config{Scanner: Scanner{ContextWindow: intPtr(-1)}},
			wantErr: "YAML global config: scanner directive is invalid: context_window must be between 0 and 50: -1",
		},
		{
			name:    "empty extension",
			cfg:     Config{Scanner: Scanner{Extensions: []string{"php", "."}}},
			wantErr: "YAML global config: scanner directive is invalid: extensions must not contain empty values",
		},
		{
			name:    "unknown backend",
			cfg:     Config{Cache: Cache{Backend: "redis"}},
			wantErr: `YAML global config: cache directive is invalid: backend must be one of memory, badger: "redis"`,
		},
		{
			name:    "negative ttl",
			cfg:     Config{Cache: Cache{TTL: -time.Second}},
			wantErr: `YAML global config: cache directive is invalid: invalid duration for "ttl": -1s cannot be negative`,
		},
		{
			name:    "webhook scheme",
			cfg:     Config{Webhook: Webhook{URL: "ftp://example.com"}},
			wantErr: `YAML global config: webhook directive is invalid: url scheme must be http or https: "ftp://example.com"`,
		},
		{
			name:    "webhook retries",
			cfg:     Config{Webhook: Webhook{RetryCount: 50}},
			wantErr: "YAML global config: webhook directive is invalid: retry_count must be between 0 and 20: 50",
		},
		{
			name:    "proxy port",
			cfg:     Config{Webhook: Webhook{Proxy: Proxy{Host: "proxy", Port: 70000}}},
			wantErr: "YAML global config: webhook directive is invalid: port must be between 1 and 65535, got 70000",
		},
		{
			name:    "metrics address",
			cfg:     Config{Metrics: Metrics{Listen: "localhost"}},
			wantErr: `YAML global config: metrics directive is invalid: invalid listen address "localhost": address localhost: missing port in address`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			assert.EqualError(t, ValidateConfig(&cfg), tt.wantErr)
		})
	}

	assert.EqualError(t, ValidateConfig(nil), "YAML global config: configuration object is nil")
}

func intPtr(v int) *int { return &v }

func TestValidateConfigAcceptsZeroContext(t *testing.T) {
	t.Setenv(EnvHome, t.TempDir())
	t.Setenv(EnvCacheBackend, "")
	t.Setenv(EnvCachePath, "")
	cfg := Config{Scanner: Scanner{ContextWindow: intPtr(0), ContextLines: intPtr(0)}}
	require.NoError(t, ValidateConfig(&cfg))
}

func TestValidateDetectorPattern(t *testing.T) {
	err := ValidateDetectorConfig(&Detector{DeclarationPattern: "(broken"})
	assert.ErrorContains(t, err, "declaration_pattern does not compile")
	assert.NoError(t, ValidateDetectorConfig(&Detector{}))
}

func TestGetBoolValue(t *testing.T) {
	yes := true
	cfg := &Config{Logger: Logger{DisableTime: &yes}}

	assert.True(t, GetBoolValue(cfg, "Logger.DisableTime", false))
	assert.False(t, GetBoolValue(cfg, "Logger.JSONFormat", false))
	assert.True(t, GetBoolValue(cfg, "Logger.Missing", true))
	assert.True(t, GetBoolValue(nil, "Logger.DisableTime", true))
	assert.True(t, GetBoolValue(cfg.Webhook.TLSClientConfig, "Verify", true))
}

func TestSetThen(t *testing.T) {
	assert.Equal(t, 3, SetThen(0, 3))
	assert.Equal(t, 5, SetThen(5, 3))
	assert.Equal(t, time.Minute, SetThen(time.Duration(0), time.Minute))
	assert.Equal(t, []string{"php"}, SetThen([]string(nil), []string{"php"}))
}
