package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scan-io-git/hposcan/internal/config"
	"github.com/scan-io-git/hposcan/internal/rules"
	"github.com/scan-io-git/hposcan/internal/service"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestNewMemoryBackend(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "plugin.php"), "<?php\n$wpdb->posts;\n// end\n")

	a, err := New(&config.Config{}, nil)
	require.NoError(t, err)
	defer a.Close()

	result, err := a.Service.ScanTarget(context.Background(), root)
	require.NoError(t, err)
	require.Len(t, result.Findings, 1)
	assert.Equal(t, "plugin.php", result.Findings[0].File)
	assert.False(t, result.Compatible)
}

func TestNewZeroContextKeepsMatchedLineOnly(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "plugin.php"), "<?php\n$wpdb->posts;\n// end\n")

	zero := 0
	cfg := &config.Config{Scanner: config.Scanner{ContextWindow: &zero, ContextLines: &zero}}
	a, err := New(cfg, nil)
	require.NoError(t, err)
	defer a.Close()

	result, err := a.Service.ScanTarget(context.Background(), root)
	require.NoError(t, err)
	require.Len(t, result.Findings, 1)
	assert.Equal(t, ">    2: $wpdb-&gt;posts;", result.Findings[0].Snippet)
	assert.Empty(t, result.Findings[0].Context.Before)
	assert.Empty(t, result.Findings[0].Context.After)
}

func TestNewBadgerBackend(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "main.php"), "<?php\nFeaturesUtil::declare_compatibility( 'custom_order_tables', __FILE__, true );\n")

	cfg := &config.Config{Cache: config.Cache{Backend: "badger", Path: filepath.Join(t.TempDir(), "db"), TTL: time.Hour}}
	a, err := New(cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, time.Hour, a.Cache.TTL)

	overview, err := a.Service.GetCompatibilityOverview(context.Background(), []service.Target{{ID: "shop", Root: root}}, false)
	require.NoError(t, err)
	assert.True(t, overview.Targets["shop"].Compatible)

	require.NoError(t, a.Close())
	require.NoError(t, a.Close())
}

func TestNewInvalidDetectorPattern(t *testing.T) {
	_, err := New(&config.Config{Detector: config.Detector{DeclarationPattern: "(broken"}}, nil)
	assert.ErrorContains(t, err, "failed to create detector")
}

func TestNewUnknownBackend(t *testing.T) {
	_, err := New(&config.Config{Cache: config.Cache{Backend: "redis"}}, nil)
	assert.EqualError(t, err, `failed to open cache store: unknown cache backend "redis"`)
}

func TestBuildRuleSet(t *testing.T) {
	base, err := BuildRuleSet(nil)
	require.NoError(t, err)

	rulesFile := filepath.Join(t.TempDir(), "rules.yml")
	writeFile(t, rulesFile, `rules:
  - literal: legacy_order_lookup
  - pattern: 'shop_order_refund'
    category: Refund post type
    description: Refunds are stored outside the posts table.
suppressions:
  - wc_get_order
`)
	extended, err := BuildRuleSet(&config.Scanner{RulesFile: rulesFile})
	require.NoError(t, err)
	assert.Equal(t, base.Len()+2, extended.Len())

	badFile := filepath.Join(t.TempDir(), "bad.yml")
	writeFile(t, badFile, "rules:\n  - category: nothing\n")
	_, err = BuildRuleSet(&config.Scanner{RulesFile: badFile})
	assert.ErrorIs(t, err, rules.ErrRuleEngineMisconfigured)
}
