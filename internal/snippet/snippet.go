// Package snippet renders the numbered source excerpt shown with each finding.
package snippet

import (
	"fmt"
	"html"
	"strings"
)

const (
	DefaultWindow       = 3
	DefaultContextLines = 4
)

// Context holds the raw lines around a finding.
type Context struct {
	Before string `json:"before"`
	After  string `json:"after"`
}

// Extract renders lines[lineNo-window .. lineNo+window] clamped to the file bounds.
// lineNo is 1-based. The matched line is marked with '>' and every line is HTML-escaped.
func Extract(lines []string, lineNo, window int) string {
	if lineNo < 1 || lineNo > len(lines) {
		return ""
	}
	if window < 0 {
		window = 0
	}

	start := max(1, lineNo-window)
	end := min(len(lines), lineNo+window)

	out := make([]string, 0, end-start+1)
	for n := start; n <= end; n++ {
		marker := " "
		if n == lineNo {
			marker = ">"
		}
		out = append(out, fmt.Sprintf("%s %4d: %s", marker, n, Escape(lines[n-1])))
	}
	return strings.TrimRight(strings.Join(out, "\n"), " \t\r\n")
}

// Surrounding returns up to n unescaped lines on either side of lineNo.
func Surrounding(lines []string, lineNo, n int) Context {
	if lineNo < 1 || lineNo > len(lines) || n <= 0 {
		return Context{}
	}
	before := lines[max(0, lineNo-1-n) : lineNo-1]
	after := lines[lineNo:min(len(lines), lineNo+n)]
	return Context{
		Before: strings.Join(before, "\n"),
		After:  strings.Join(after, "\n"),
	}
}

// Escape makes a source line safe to embed in markup.
func Escape(line string) string {
	return html.EscapeString(line)
}
