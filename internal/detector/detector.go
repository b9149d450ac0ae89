// Package detector decides whether a target tree declares HPOS compatibility.
package detector

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/scan-io-git/hposcan/internal/walker"
)

const (
	DefaultDeclarationPattern = `(?i)FeaturesUtil::declare_compatibility\s*\(\s*['"]custom_order_tables['"]\s*,`
	DefaultCapabilityKeyword  = "custom_order_tables"
)

var (
	DefaultIndicators = []string{
		"declare_hpos_compatibility",
		"declare_wc_hpos_compatibility",
		"woocommerce_hpos_compatible",
	}
	DefaultInitHooks = []string{
		"before_woocommerce_init",
		"plugins_loaded",
	}
)

// errFound stops the walk at the first declaring file.
var errFound = errors.New("compatibility declaration found")

// Config holds the detection conditions. Zero values fall back to the defaults.
type Config struct {
	DeclarationPattern string
	Indicators         []string
	CapabilityKeyword  string
	InitHooks          []string
	Extensions         []string
}

// Detector tests source files for a compatibility declaration.
type Detector struct {
	declaration *regexp.Regexp
	indicators  []string
	capability  string
	initHooks   []string
	walker      *walker.Walker
	logger      hclog.Logger
}

// New builds a Detector from cfg.
func New(cfg Config, logger hclog.Logger) (*Detector, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	pattern := cfg.DeclarationPattern
	if pattern == "" {
		pattern = DefaultDeclarationPattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid declaration pattern %q: %w", pattern, err)
	}

	indicators := cfg.Indicators
	if len(indicators) == 0 {
		indicators = DefaultIndicators
	}
	hooks := cfg.InitHooks
	if len(hooks) == 0 {
		hooks = DefaultInitHooks
	}
	capability := cfg.CapabilityKeyword
	if capability == "" {
		capability = DefaultCapabilityKeyword
	}

	return &Detector{
		declaration: re,
		indicators:  lowerAll(indicators),
		capability:  strings.ToLower(capability),
		initHooks:   lowerAll(hooks),
		walker:      walker.New(cfg.Extensions, false, logger),
		logger:      logger,
	}, nil
}

// Detect walks root and reports true at the first file satisfying any condition.
// Read failures count as "not declared"; only context errors are returned.
func (d *Detector) Detect(ctx context.Context, root string) (bool, error) {
	err := d.walker.Walk(ctx, root, func(path string) error {
		content, err := os.ReadFile(path)
		if err != nil {
			d.logger.Debug("skipping unreadable file", "path", path, "error", err)
			return nil
		}
		if d.Declares(string(content)) {
			d.logger.Debug("compatibility declaration found", "path", path)
			return errFound
		}
		return nil
	})

	switch {
	case err == nil:
		return false, nil
	case errors.Is(err, errFound):
		return true, nil
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false, err
	default:
		d.logger.Debug("detection walk failed, treating as not compatible", "root", root, "error", err)
		return false, nil
	}
}

// Declares reports whether a single file's contents satisfy any detection condition.
func (d *Detector) Declares(content string) bool {
	if d.declaration.MatchString(content) {
		return true
	}

	lower := strings.ToLower(content)
	for _, indicator := range d.indicators {
		if strings.Contains(lower, indicator) {
			return true
		}
	}

	if !strings.Contains(lower, d.capability) {
		return false
	}
	for _, hook := range d.initHooks {
		if strings.Contains(lower, hook) {
			return true
		}
	}
	return false
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}
