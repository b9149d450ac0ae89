// Package matcher decides which rules fire on a single line of source.
package matcher

import (
	"strings"

	"github.com/scan-io-git/hposcan/internal/rules"
)

// DefaultCommentPrefixes are the line-comment and block-comment continuation markers.
var DefaultCommentPrefixes = []string{"//", "*"}

// Hit is one rule firing on a line.
type Hit struct {
	Rule        rules.Rule
	Term        string
	Description string
}

// Matcher applies a rule snapshot to lines of text.
type Matcher struct {
	commentPrefixes []string
}

// New creates a Matcher. With no prefixes the defaults are used.
func New(commentPrefixes ...string) *Matcher {
	if len(commentPrefixes) == 0 {
		commentPrefixes = DefaultCommentPrefixes
	}
	return &Matcher{commentPrefixes: commentPrefixes}
}

// IsComment reports whether the line starts with a comment marker once leading whitespace is trimmed.
func (m *Matcher) IsComment(line string) bool {
	trimmed := strings.TrimLeft(line, " \t\r\n\v\f")
	for _, prefix := range m.commentPrefixes {
		if strings.HasPrefix(trimmed, prefix) {
			return true
		}
	}
	return false
}

// Match returns a Hit for every rule in snap that matches line and is not suppressed, in rule order.
func (m *Matcher) Match(line string, snap rules.Snapshot) []Hit {
	if strings.TrimSpace(line) == "" || m.IsComment(line) {
		return nil
	}

	lower := strings.ToLower(line)
	var hits []Hit
	for _, rule := range snap.Rules {
		if !matches(rule, line, lower) {
			continue
		}
		if suppressed(lower, snap.Suppressions) {
			continue
		}
		hits = append(hits, Hit{
			Rule:        rule,
			Term:        rule.Term(),
			Description: rule.Description(),
		})
	}
	return hits
}

func matches(rule rules.Rule, line, lower string) bool {
	switch r := rule.(type) {
	case rules.LiteralRule:
		return r.Lower() != "" && strings.Contains(lower, r.Lower())
	case rules.PatternRule:
		return r.Regexp() != nil && r.Regexp().MatchString(line)
	default:
		return false
	}
}

func suppressed(lower string, suppressions []string) bool {
	for _, s := range suppressions {
		if strings.Contains(lower, strings.ToLower(s)) {
			return true
		}
	}
	return false
}
