// Package app assembles the scan pipeline, cache and service from the loaded configuration.
package app

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/scan-io-git/hposcan/internal/compat"
	"github.com/scan-io-git/hposcan/internal/config"
	"github.com/scan-io-git/hposcan/internal/detector"
	"github.com/scan-io-git/hposcan/internal/matcher"
	"github.com/scan-io-git/hposcan/internal/notify"
	"github.com/scan-io-git/hposcan/internal/rules"
	"github.com/scan-io-git/hposcan/internal/scanner"
	"github.com/scan-io-git/hposcan/internal/service"
	"github.com/scan-io-git/hposcan/internal/store"
	"github.com/scan-io-git/hposcan/internal/walker"
)

// App holds the wired components. Close releases the cache store.
type App struct {
	Service *service.Service
	Scanner *scanner.Scanner
	Cache   *compat.Cache
	Store   store.Store
}

// New builds every component described by cfg. The caller must Close the result.
func New(cfg *config.Config, logger hclog.Logger) (*App, error) {
	if cfg == nil {
		cfg = &config.Config{}
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	ruleSet, err := BuildRuleSet(&cfg.Scanner)
	if err != nil {
		return nil, err
	}

	det, err := detector.New(detector.Config{
		DeclarationPattern: cfg.Detector.DeclarationPattern,
		Indicators:         cfg.Detector.Indicators,
		CapabilityKeyword:  cfg.Detector.CapabilityKeyword,
		InitHooks:          cfg.Detector.InitHooks,
		Extensions:         cfg.Scanner.Extensions,
	}, logger.Named("detector"))
	if err != nil {
		return nil, fmt.Errorf("failed to create detector: %w", err)
	}

	st, err := store.Open(store.Config{
		Backend:    cfg.Cache.Backend,
		Path:       config.GetCachePath(cfg),
		Size:       cfg.Cache.Size,
		GCInterval: cfg.Cache.GCInterval,
	}, logger.Named("store"))
	if err != nil {
		return nil, fmt.Errorf("failed to open cache store: %w", err)
	}

	cache := compat.New(st, det, logger.Named("cache"))
	cache.TTL = config.GetCacheTTL(cfg)

	scan, err := scanner.New(scanner.Options{
		RuleSet:      ruleSet,
		Walker:       walker.New(cfg.Scanner.Extensions, true, logger.Named("walker")),
		Matcher:      matcher.New(cfg.Scanner.CommentPrefixes...),
		Cache:        cache,
		Window:       contextSetting(cfg.Scanner.ContextWindow),
		ContextLines: contextSetting(cfg.Scanner.ContextLines),
		Workers:      cfg.Scanner.Workers,
		Logger:       logger.Named("scanner"),
	})
	if err != nil {
		st.Close()
		return nil, err
	}

	svc := service.New(scan, cache, logger.Named("service"))
	svc.Register(notify.LogObserver{Logger: logger.Named("notify")})
	if cfg.Webhook.URL != "" {
		webhook, err := notify.NewWebhook(&cfg.Webhook, logger.Named("webhook"))
		if err != nil {
			st.Close()
			return nil, err
		}
		svc.Register(webhook)
	}

	return &App{Service: svc, Scanner: scan, Cache: cache, Store: st}, nil
}

// BuildRuleSet returns the default rule set extended with the configured rules file, if any.
func BuildRuleSet(scannerConfig *config.Scanner) (*rules.RuleSet, error) {
	rs := rules.Default()
	if scannerConfig == nil || scannerConfig.RulesFile == "" {
		return rs, nil
	}
	file, err := rules.LoadFile(scannerConfig.RulesFile)
	if err != nil {
		return nil, err
	}
	if err := rs.Apply(file); err != nil {
		return nil, fmt.Errorf("failed to apply rules file %q: %w", scannerConfig.RulesFile, err)
	}
	return rs, nil
}

// Close releases the cache store.
func (a *App) Close() error {
	if a == nil || a.Store == nil {
		return nil
	}
	if err := a.Store.Close(); err != nil && !errors.Is(err, store.ErrClosed) {
		return err
	}
	return nil
}

// contextSetting maps an optional line count onto scanner options: unset keeps the default, 0 disables context.
func contextSetting(v *int) int {
	switch {
	case v == nil:
		return 0
	case *v == 0:
		return scanner.NoContext
	default:
		return *v
	}
}
