// Package rules holds the match rules and suppression patterns applied by the line matcher.
package rules

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"
)

// ErrRuleEngineMisconfigured is returned when a rule cannot be registered, e.g. a pattern fails to compile.
var ErrRuleEngineMisconfigured = errors.New("rule engine misconfigured")

// WrapMisconfigured adds context to ErrRuleEngineMisconfigured.
func WrapMisconfigured(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrRuleEngineMisconfigured, fmt.Sprintf(format, args...))
}

// Rule is either a LiteralRule or a PatternRule.
type Rule interface {
	// Term is the short display term reported with a finding.
	Term() string
	// Description is the human-readable explanation reported with a finding.
	Description() string
	isRule()
}

// LiteralRule matches a case-insensitive substring.
type LiteralRule struct {
	literal string
	lower   string
}

// NewLiteral creates a literal rule for the given term.
func NewLiteral(term string) (LiteralRule, error) {
	if term == "" {
		return LiteralRule{}, WrapMisconfigured("literal rule term is empty")
	}
	return LiteralRule{literal: term, lower: strings.ToLower(term)}, nil
}

func (r LiteralRule) Term() string { return r.literal }

func (r LiteralRule) Description() string {
	return fmt.Sprintf("Found \"%s\" which may indicate direct database access or use of deprecated APIs.", r.literal)
}

// Lower returns the lower-cased term used for case-insensitive matching.
func (r LiteralRule) Lower() string { return r.lower }

func (LiteralRule) isRule() {}

// PatternRule matches a regular expression against a single line.
type PatternRule struct {
	expr        *regexp.Regexp
	category    string
	description string
}

// NewPattern compiles expr into a pattern rule.
func NewPattern(expr, category, description string) (PatternRule, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return PatternRule{}, fmt.Errorf("%w: pattern %q: %v", ErrRuleEngineMisconfigured, expr, err)
	}
	if description == "" {
		description = "Pattern match"
	}
	return PatternRule{expr: re, category: category, description: description}, nil
}

// MustPattern is like NewPattern but panics on an invalid expression.
func MustPattern(expr, category, description string) PatternRule {
	r, err := NewPattern(expr, category, description)
	if err != nil {
		panic(err)
	}
	return r
}

// Term returns the humanized category, e.g. "order_post_type" becomes "Order post type".
func (r PatternRule) Term() string {
	if r.category == "" {
		return "Pattern match"
	}
	s := strings.ReplaceAll(r.category, "_", " ")
	first, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(first)) + s[size:]
}

func (r PatternRule) Description() string { return r.description }

// Category returns the raw category tag.
func (r PatternRule) Category() string { return r.category }

// Regexp returns the compiled expression.
func (r PatternRule) Regexp() *regexp.Regexp { return r.expr }

func (PatternRule) isRule() {}

// Extension adds rules or suppression patterns to a RuleSet.
type Extension interface {
	Extend(rs *RuleSet) error
}

// ExtensionFunc adapts a function to the Extension interface.
type ExtensionFunc func(rs *RuleSet) error

func (f ExtensionFunc) Extend(rs *RuleSet) error { return f(rs) }

// Snapshot is an immutable view of a RuleSet taken at the start of a scan.
type Snapshot struct {
	Rules        []Rule
	Suppressions []string
}

// RuleSet is an ordered, append-only list of rules and suppression patterns.
type RuleSet struct {
	mu           sync.RWMutex
	rules        []Rule
	suppressions []string
}

// New returns an empty RuleSet.
func New() *RuleSet {
	return &RuleSet{}
}

// Register appends rule to the set. Rules not built by NewLiteral or NewPattern are rejected.
func (rs *RuleSet) Register(rule Rule) error {
	if err := validate(rule); err != nil {
		return err
	}
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.rules = append(rs.rules, rule)
	return nil
}

func validate(rule Rule) error {
	switch r := rule.(type) {
	case LiteralRule:
		if r.literal == "" || r.lower == "" {
			return WrapMisconfigured("literal rule term is empty")
		}
	case PatternRule:
		if r.expr == nil {
			return WrapMisconfigured("pattern rule %q has no compiled expression", r.category)
		}
	default:
		return WrapMisconfigured("unsupported rule type %T", rule)
	}
	return nil
}

// RegisterLiteral appends a literal rule.
func (rs *RuleSet) RegisterLiteral(term string) error {
	r, err := NewLiteral(term)
	if err != nil {
		return err
	}
	return rs.Register(r)
}

// RegisterPattern compiles and appends a pattern rule.
func (rs *RuleSet) RegisterPattern(expr, category, description string) error {
	r, err := NewPattern(expr, category, description)
	if err != nil {
		return err
	}
	return rs.Register(r)
}

// RegisterSuppression appends a suppression pattern. Empty patterns are ignored.
func (rs *RuleSet) RegisterSuppression(pattern string) {
	if pattern == "" {
		return
	}
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.suppressions = append(rs.suppressions, pattern)
}

// Apply runs every extension against the set, stopping at the first error.
func (rs *RuleSet) Apply(exts ...Extension) error {
	for _, ext := range exts {
		if ext == nil {
			continue
		}
		if err := ext.Extend(rs); err != nil {
			return err
		}
	}
	return nil
}

// Len returns the number of registered rules.
func (rs *RuleSet) Len() int {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	return len(rs.rules)
}

// Snapshot copies the current rules and suppressions.
func (rs *RuleSet) Snapshot() Snapshot {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	snap := Snapshot{
		Rules:        make([]Rule, len(rs.rules)),
		Suppressions: make([]string, len(rs.suppressions)),
	}
	copy(snap.Rules, rs.rules)
	copy(snap.Suppressions, rs.suppressions)
	return snap
}
