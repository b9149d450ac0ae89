// Package scanner drives a scan: it resolves the target, looks up the compatibility
// verdict and matches every source line against the rule set.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"

	"github.com/scan-io-git/hposcan/internal/compat"
	"github.com/scan-io-git/hposcan/internal/matcher"
	"github.com/scan-io-git/hposcan/internal/rules"
	"github.com/scan-io-git/hposcan/internal/snippet"
	"github.com/scan-io-git/hposcan/internal/walker"
)

// NoContext asks for the matched line alone in Options.Window or Options.ContextLines.
const NoContext = -1

// NoIssuesMessage is reported when a scan produces no findings.
const NoIssuesMessage = "No issues found in the selected target."

// Finding is one reported occurrence of a rule match.
type Finding struct {
	File        string          `json:"file"`        // Slash-separated path relative to the target root
	Term        string          `json:"term"`        // Display term of the matching rule
	Description string          `json:"description"` // Explanation of the matching rule
	Line        int             `json:"line"`        // 1-based line number
	Code        string          `json:"code"`        // Matched line, HTML-escaped
	Snippet     string          `json:"snippet"`     // Numbered excerpt around the match
	Context     snippet.Context `json:"context"`     // Raw lines before and after the match
}

// ScanResult is the outcome of a successful scan.
type ScanResult struct {
	ID           string    `json:"id"`
	Root         string    `json:"root"`
	Compatible   bool      `json:"hpos_compatible"`
	Findings     []Finding `json:"findings"`
	FilesScanned int       `json:"files_scanned"`
	GeneratedAt  time.Time `json:"generated_at"`
	Message      string    `json:"message,omitempty"`
}

// Verdicter supplies the compatibility verdict for a tree.
type Verdicter interface {
	Verdict(ctx context.Context, root string, forceRefresh bool) (bool, error)
}

// Options configures a Scanner. Zero values fall back to defaults.
type Options struct {
	RuleSet      *rules.RuleSet
	Walker       *walker.Walker
	Matcher      *matcher.Matcher
	Cache        Verdicter
	Window       int // Snippet lines on either side of a match, NoContext for none
	ContextLines int // Raw context lines on either side of a match, NoContext for none
	Workers      int // Files matched concurrently
	Logger       hclog.Logger
}

// Scanner represents a configured scan pipeline. It is safe for concurrent use.
type Scanner struct {
	rules        *rules.RuleSet
	walker       *walker.Walker
	matcher      *matcher.Matcher
	cache        Verdicter
	window       int
	contextLines int
	workers      int
	logger       hclog.Logger
}

// New creates a Scanner from opts. A verdict source is required.
func New(opts Options) (*Scanner, error) {
	if opts.Cache == nil {
		return nil, errors.New("scanner requires a compatibility cache")
	}

	s := &Scanner{
		rules:        opts.RuleSet,
		walker:       opts.Walker,
		matcher:      opts.Matcher,
		cache:        opts.Cache,
		window:       opts.Window,
		contextLines: opts.ContextLines,
		workers:      opts.Workers,
		logger:       opts.Logger,
	}
	if s.logger == nil {
		s.logger = hclog.NewNullLogger()
	}
	if s.rules == nil {
		s.rules = rules.Default()
	}
	if s.walker == nil {
		s.walker = walker.New(nil, true, s.logger)
	}
	if s.matcher == nil {
		s.matcher = matcher.New()
	}
	if s.window == 0 {
		s.window = snippet.DefaultWindow
	}
	if s.contextLines == 0 {
		s.contextLines = snippet.DefaultContextLines
	}
	if s.workers <= 0 {
		s.workers = runtime.NumCPU()
	}
	return s, nil
}

// ResolveTarget turns a file or directory path into the absolute root directory to scan.
func ResolveTarget(target string) (string, error) {
	info, err := os.Stat(target)
	if errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("%w: %q", ErrTargetNotFound, target)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrTargetUnreadable, target, err)
	}

	root := target
	if !info.IsDir() {
		root = filepath.Dir(target)
	}
	root, err = filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrTargetUnreadable, target, err)
	}
	if !compat.ReadableDir(root) {
		return "", fmt.Errorf("%w: %q", ErrTargetUnreadable, root)
	}
	return root, nil
}

// Scan runs the full pipeline against target. On error no partial result is returned.
func (s *Scanner) Scan(ctx context.Context, target string) (*ScanResult, error) {
	start := time.Now()
	result, err := s.scan(ctx, target)
	scanDuration.Observe(time.Since(start).Seconds())

	code := ErrorCode(err)
	if code == "" {
		code = "ok"
	}
	scansTotal.WithLabelValues(code).Inc()

	if err != nil {
		s.logger.Error("scan failed", "target", target, "code", ErrorCode(err), "error", err)
		return nil, err
	}
	findingsTotal.Add(float64(len(result.Findings)))
	filesScannedTotal.Add(float64(result.FilesScanned))
	s.logger.Info("scan finished", "root", result.Root, "files", result.FilesScanned,
		"findings", len(result.Findings), "compatible", result.Compatible, "duration", time.Since(start))
	return result, nil
}

func (s *Scanner) scan(ctx context.Context, target string) (*ScanResult, error) {
	root, err := ResolveTarget(target)
	if err != nil {
		return nil, err
	}

	compatible, err := s.cache.Verdict(ctx, root, false)
	if err != nil {
		return nil, fmt.Errorf("failed to get compatibility verdict: %w", err)
	}

	snap := s.rules.Snapshot()
	paths, err := s.walker.Collect(ctx, root)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("scan starting", "root", root, "files", len(paths), "rules", len(snap.Rules), "workers", s.workers)

	perFile := make([][]Finding, len(paths))
	var scanned atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			findings, err := s.scanFile(root, path, snap)
			if err != nil {
				s.logger.Warn("skipping file", "path", path, "error", err)
				return nil
			}
			perFile[i] = findings
			scanned.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	findings := make([]Finding, 0)
	for _, fs := range perFile {
		findings = append(findings, fs...)
	}

	result := &ScanResult{
		ID:           uuid.NewString(),
		Root:         root,
		Compatible:   compatible,
		Findings:     findings,
		FilesScanned: int(scanned.Load()),
		GeneratedAt:  time.Now().UTC(),
	}
	if len(findings) == 0 {
		result.Message = NoIssuesMessage
	} else {
		result.Message = fmt.Sprintf("Found %d potential issue(s) in %d file(s).", len(findings), countFiles(findings))
	}
	return result, nil
}

// scanFile matches every line of one file. Findings come out in line order, then rule order.
func (s *Scanner) scanFile(root, path string, snap rules.Snapshot) ([]Finding, error) {
	lines, err := ReadLines(path)
	if err != nil {
		return nil, err
	}

	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	rel = filepath.ToSlash(rel)

	var findings []Finding
	for i, line := range lines {
		lineNo := i + 1
		hits := s.matcher.Match(line, snap)
		if len(hits) == 0 {
			continue
		}
		excerpt := snippet.Extract(lines, lineNo, s.window)
		surrounding := snippet.Surrounding(lines, lineNo, s.contextLines)
		for _, hit := range hits {
			findings = append(findings, Finding{
				File:        rel,
				Term:        hit.Term,
				Description: hit.Description,
				Line:        lineNo,
				Code:        snippet.Escape(line),
				Snippet:     excerpt,
				Context:     surrounding,
			})
		}
	}
	return findings, nil
}

// ReadLines reads a file as lines without their terminators. A final newline does not add an empty line.
func ReadLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrFileUnreadable, path, err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	content := strings.TrimSuffix(string(data), "\n")
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines, nil
}

func countFiles(findings []Finding) int {
	seen := make(map[string]struct{})
	for _, f := range findings {
		seen[f.File] = struct{}{}
	}
	return len(seen)
}
