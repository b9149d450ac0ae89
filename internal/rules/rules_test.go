package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPatternRuleTerm(t *testing.T) {
	tests := []struct {
		name     string
		category string
		want     string
	}{
		{name: "snake case category", category: "order_post_type", want: "Order post type"},
		{name: "single word", category: "wc_class", want: "Wc class"},
		{name: "empty category", category: "", want: "Pattern match"},
		{name: "multibyte first letter", category: "état_commande", want: "État commande"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := MustPattern(`x`, tt.category, "desc")
			assert.Equal(t, tt.want, r.Term())
		})
	}
}

func TestLiteralRuleDescription(t *testing.T) {
	r, err := NewLiteral("wpdb")
	require.NoError(t, err)
	assert.Equal(t, "wpdb", r.Term())
	assert.Equal(t, "wpdb", r.Lower())
	assert.Equal(t, `Found "wpdb" which may indicate direct database access or use of deprecated APIs.`, r.Description())
}

func TestRegisterPatternRejectsInvalidExpression(t *testing.T) {
	rs := New()
	err := rs.RegisterPattern(`(unclosed`, "broken", "never compiles")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRuleEngineMisconfigured)
	assert.Equal(t, 0, rs.Len())
}

func TestRegisterLiteralRejectsEmptyTerm(t *testing.T) {
	err := New().RegisterLiteral("")
	assert.ErrorIs(t, err, ErrRuleEngineMisconfigured)
}

func TestRegisterRejectsZeroValueRules(t *testing.T) {
	tests := []struct {
		name string
		rule Rule
	}{
		{name: "zero literal", rule: LiteralRule{}},
		{name: "zero pattern", rule: PatternRule{}},
		{name: "nil rule", rule: nil},
		{name: "literal pointer", rule: &LiteralRule{literal: "wpdb", lower: "wpdb"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs := New()
			err := rs.Register(tt.rule)
			assert.ErrorIs(t, err, ErrRuleEngineMisconfigured)
			assert.Equal(t, 0, rs.Len())
		})
	}
}

func TestRegisterAcceptsConstructedRules(t *testing.T) {
	rs := New()
	lit, err := NewLiteral("wpdb")
	require.NoError(t, err)
	require.NoError(t, rs.Register(lit))
	require.NoError(t, rs.Register(MustPattern(`post_type`, "order_post_type", "desc")))
	assert.Equal(t, 2, rs.Len())
}

func TestSnapshotIsIsolatedFromLaterRegistration(t *testing.T) {
	rs := New()
	require.NoError(t, rs.RegisterLiteral("first"))
	rs.RegisterSuppression("safe")

	snap := rs.Snapshot()
	require.NoError(t, rs.RegisterLiteral("second"))
	rs.RegisterSuppression("")

	assert.Len(t, snap.Rules, 1)
	assert.Equal(t, "first", snap.Rules[0].Term())
	assert.Equal(t, []string{"safe"}, snap.Suppressions)
	assert.Equal(t, 2, rs.Len())
	assert.Equal(t, "first", rs.Snapshot().Rules[0].Term())
}

func TestDefaultRuleSetOrder(t *testing.T) {
	snap := Default().Snapshot()
	require.Len(t, snap.Rules, len(defaultPatterns)+len(defaultLiterals))

	first, ok := snap.Rules[0].(PatternRule)
	require.True(t, ok)
	assert.Equal(t, "order_post_type", first.Category())

	last, ok := snap.Rules[len(snap.Rules)-1].(LiteralRule)
	require.True(t, ok)
	assert.Equal(t, "wc-api=wc-orders", last.Term())
	assert.Contains(t, snap.Suppressions, "wc_get_order")
}

func TestApplyExtensionFunc(t *testing.T) {
	rs := New()
	err := rs.Apply(ExtensionFunc(func(rs *RuleSet) error {
		return rs.RegisterLiteral("get_post_meta")
	}))
	require.NoError(t, err)
	assert.Equal(t, 1, rs.Len())
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yml")
	content := `rules:
  - literal: "wpdb"
  - pattern: 'get_post_field\s*\('
    category: wp_function
    description: get_post_field call
suppressions:
  - "wc_get_order"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	f, err := LoadFile(path)
	require.NoError(t, err)

	rs := New()
	require.NoError(t, rs.Apply(f))

	snap := rs.Snapshot()
	require.Len(t, snap.Rules, 2)
	assert.Equal(t, "wpdb", snap.Rules[0].Term())
	assert.Equal(t, "Wp function", snap.Rules[1].Term())
	assert.Equal(t, []string{"wc_get_order"}, snap.Suppressions)
}

func TestLoadFileInvalidRules(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "bad expression", content: "rules:\n  - pattern: '(broken'\n"},
		{name: "both kinds", content: "rules:\n  - literal: a\n    pattern: b\n"},
		{name: "empty rule", content: "rules:\n  - category: x\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "rules.yml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			f, err := LoadFile(path)
			require.NoError(t, err)
			assert.ErrorIs(t, New().Apply(f), ErrRuleEngineMisconfigured)
		})
	}
}
