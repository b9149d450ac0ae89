// Package report renders scan results as JSON, SARIF or plain text.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/owenrumney/go-sarif/v2/sarif"

	"github.com/scan-io-git/hposcan/internal/scanner"
	"github.com/scan-io-git/hposcan/pkg/shared/files"
)

const (
	FormatJSON  = "json"
	FormatSARIF = "sarif"
	FormatText  = "text"

	ToolName           = "hposcan"
	ToolInformationURI = "https://github.com/scan-io-git/hposcan"
)

// Formats lists the supported output formats.
var Formats = []string{FormatJSON, FormatSARIF, FormatText}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// WriteSARIF writes the findings as a SARIF 2.1.0 log with one rule per term.
func WriteSARIF(w io.Writer, result *scanner.ScanResult) error {
	reportSarif, err := sarif.New(sarif.Version210)
	if err != nil {
		return fmt.Errorf("failed to create SARIF report: %w", err)
	}

	run := sarif.NewRunWithInformationURI(ToolName, ToolInformationURI)
	described := make(map[string]bool)
	for _, f := range result.Findings {
		// AddRule hands back the existing rule for a repeated ID; the first finding describes it.
		id := RuleID(f.Term)
		rule := run.AddRule(id)
		if !described[id] {
			described[id] = true
			rule.WithDescription(f.Description).
				WithDefaultConfiguration(&sarif.ReportingConfiguration{Level: "warning"})
		}

		location := sarif.NewLocation().WithPhysicalLocation(
			sarif.NewPhysicalLocation().
				WithArtifactLocation(sarif.NewArtifactLocation().WithUri(f.File)).
				WithRegion(sarif.NewRegion().WithStartLine(f.Line)),
		)

		run.AddResult(sarif.NewRuleResult(rule.ID).
			WithMessage(sarif.NewTextMessage(f.Description)).
			WithLevel("warning").
			WithLocations([]*sarif.Location{location}))
	}
	reportSarif.AddRun(run)

	return reportSarif.PrettyWrite(w)
}

// RuleID turns a display term into a stable SARIF rule identifier.
func RuleID(term string) string {
	id := strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(term), "-"), "-")
	if id == "" {
		return "pattern-match"
	}
	return id
}

// RenderText produces a human-readable report grouped by file, sorted by line.
func RenderText(result *scanner.ScanResult) string {
	var output strings.Builder

	output.WriteString(fmt.Sprintf("### HPOS compatibility scan: %s\n", result.Root))
	output.WriteString(fmt.Sprintf("Declares HPOS compatibility: %s\n", yesNo(result.Compatible)))
	output.WriteString(fmt.Sprintf("Files scanned: %d\n", result.FilesScanned))
	output.WriteString(result.Message + "\n")

	byFile := make(map[string][]scanner.Finding)
	var paths []string
	for _, f := range result.Findings {
		if _, ok := byFile[f.File]; !ok {
			paths = append(paths, f.File)
		}
		byFile[f.File] = append(byFile[f.File], f)
	}
	sort.Strings(paths)

	for _, path := range paths {
		findings := byFile[path]
		sort.SliceStable(findings, func(i, j int) bool { return findings[i].Line < findings[j].Line })

		output.WriteString(fmt.Sprintf("\n#### Path: %s\n```\n", path))
		for _, f := range findings {
			output.WriteString(fmt.Sprintf("    %s line %d: %s\n%s\n\n", f.Term, f.Line, f.Description, f.Snippet))
		}
		output.WriteString("```\n")
	}
	return output.String()
}

// Render encodes result in the given format.
func Render(format string, result *scanner.ScanResult) ([]byte, error) {
	var buf bytes.Buffer
	switch strings.ToLower(format) {
	case "", FormatJSON:
		if err := WriteJSON(&buf, result); err != nil {
			return nil, err
		}
	case FormatSARIF:
		if err := WriteSARIF(&buf, result); err != nil {
			return nil, err
		}
	case FormatText:
		buf.WriteString(RenderText(result))
	default:
		return nil, fmt.Errorf("unsupported report format %q", format)
	}
	return buf.Bytes(), nil
}

// Write renders result and saves it at path. A directory path (or one without an extension)
// gets a generated file name. The full file path is returned.
func Write(path, format string, result *scanner.ScanResult) (string, error) {
	data, err := Render(format, result)
	if err != nil {
		return "", err
	}

	nameTemplate := fmt.Sprintf("hposcan-report-%s.%s", result.GeneratedAt.UTC().Format("20060102T150405Z"), extension(format))
	fullPath, folder, err := files.DetermineFileFullPath(path, nameTemplate)
	if err != nil {
		return "", fmt.Errorf("failed to determine report path: %w", err)
	}
	if err := files.CreateFolderIfNotExists(folder); err != nil {
		return "", err
	}
	if err := files.WriteFile(fullPath, data); err != nil {
		return "", err
	}
	return fullPath, nil
}

func extension(format string) string {
	switch strings.ToLower(format) {
	case FormatSARIF:
		return "sarif"
	case FormatText:
		return "md"
	default:
		return "json"
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// WriteTo writes result to w when path is empty, otherwise saves it with Write.
func WriteTo(w io.Writer, path, format string, result *scanner.ScanResult) (string, error) {
	if path != "" {
		return Write(path, format, result)
	}
	data, err := Render(format, result)
	if err != nil {
		return "", err
	}
	_, err = w.Write(data)
	return "", err
}

// EmitJSON writes v as JSON to w, or to the file at path when one is given.
func EmitJSON(w io.Writer, path string, v interface{}) error {
	if path == "" {
		return WriteJSON(w, v)
	}
	var buf bytes.Buffer
	if err := WriteJSON(&buf, v); err != nil {
		return err
	}
	if err := files.CreateFolderIfNotExists(filepath.Dir(path)); err != nil {
		return err
	}
	return files.WriteFile(path, buf.Bytes())
}
