package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	yaml "gopkg.in/yaml.v2"
)

// DefaultConfigFile is looked up in the working directory and then in the home folder.
const DefaultConfigFile = "config.yml"

// Config is the YAML layout of the hposcan configuration file.
type Config struct {
	Hposcan  Hposcan  `yaml:"hposcan"`
	Logger   Logger   `yaml:"logger"`
	Scanner  Scanner  `yaml:"scanner"`
	Detector Detector `yaml:"detector"`
	Cache    Cache    `yaml:"cache"`
	Webhook  Webhook  `yaml:"webhook"`
	Metrics  Metrics  `yaml:"metrics"`
}

type Hposcan struct {
	HomeFolder string `yaml:"home_folder"`
}

type Logger struct {
	Level           string `yaml:"level"`
	DisableTime     *bool  `yaml:"disable_time"`
	JSONFormat      *bool  `yaml:"json_format"`
	IncludeLocation *bool  `yaml:"include_location"`
}

type Scanner struct {
	Extensions      []string `yaml:"extensions"`
	ContextWindow   *int     `yaml:"context_window"`
	ContextLines    *int     `yaml:"context_lines"`
	Workers         int      `yaml:"workers"`
	CommentPrefixes []string `yaml:"comment_prefixes"`
	RulesFile       string   `yaml:"rules_file"`
}

type Detector struct {
	DeclarationPattern string   `yaml:"declaration_pattern"`
	Indicators         []string `yaml:"indicators"`
	CapabilityKeyword  string   `yaml:"capability_keyword"`
	InitHooks          []string `yaml:"init_hooks"`
}

type Cache struct {
	Backend    string        `yaml:"backend"`
	Path       string        `yaml:"path"`
	TTL        time.Duration `yaml:"ttl"`
	Size       int           `yaml:"size"`
	GCInterval time.Duration `yaml:"gc_interval"`
}

type Webhook struct {
	URL              string            `yaml:"url"`
	Debug            *bool             `yaml:"debug"`
	RetryCount       int               `yaml:"retry_count"`
	RetryWaitTime    time.Duration     `yaml:"retry_wait_time"`
	RetryMaxWaitTime time.Duration     `yaml:"retry_max_wait_time"`
	Timeout          time.Duration     `yaml:"timeout"`
	Headers          map[string]string `yaml:"headers"`
	TLSClientConfig  TLSClientConfig   `yaml:"tls_client_config"`
	Proxy            Proxy             `yaml:"proxy"`
}

type TLSClientConfig struct {
	Verify *bool `yaml:"verify"`
}

type Proxy struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type Metrics struct {
	Listen string `yaml:"listen"`
}

// LoadYAML decodes the YAML file at configPath into data.
func LoadYAML(configPath string, data interface{}) error {
	s, err := os.Stat(configPath)
	if err != nil {
		return err
	}
	if s.IsDir() {
		return fmt.Errorf("%q is a directory, not a file", configPath)
	}

	file, err := os.Open(configPath)
	if err != nil {
		return err
	}
	defer file.Close()

	d := yaml.NewDecoder(file)
	d.SetStrict(true)
	if err := d.Decode(data); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// LoadConfig reads the configuration file. An empty path looks for DefaultConfigFile in
// the working directory and then in the home folder; if none exists the defaults are used.
func LoadConfig(configPath string) (*Config, error) {
	cfg := &Config{}

	if configPath == "" {
		configPath = findDefaultConfig()
		if configPath == "" {
			return cfg, nil
		}
	}

	if err := LoadYAML(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config %q: %w", configPath, err)
	}
	return cfg, nil
}

func findDefaultConfig() string {
	candidates := []string{DefaultConfigFile}
	if home, err := resolveHome(""); err == nil {
		candidates = append(candidates, filepath.Join(home, DefaultConfigFile))
	}
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			return c
		}
	}
	return ""
}
