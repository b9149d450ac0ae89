package scan

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scan-io-git/hposcan/internal/config"
)

func TestValidateScanArgs(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name       string
		options    RunOptionsScan
		args       []string
		wantFormat string
		wantErr    string
	}{
		{
			name:       "Valid target with default format",
			args:       []string{tmpDir},
			wantFormat: "json",
		},
		{
			name:       "Format is case insensitive",
			options:    RunOptionsScan{ReportFormat: "SARIF"},
			args:       []string{tmpDir},
			wantFormat: "sarif",
		},
		{
			name:    "No target",
			wantErr: "exactly one target path must be specified",
		},
		{
			name:    "Two targets",
			args:    []string{tmpDir, tmpDir},
			wantErr: "exactly one target path must be specified",
		},
		{
			name:    "Missing target",
			args:    []string{filepath.Join(tmpDir, "missing")},
			wantErr: "the target path does not exist: " + filepath.Join(tmpDir, "missing"),
		},
		{
			name:    "Unknown format",
			options: RunOptionsScan{ReportFormat: "xml"},
			args:    []string{tmpDir},
			wantErr: "the 'format' flag must be one of json, sarif, text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := tt.options
			err := validateScanArgs(&opts, tt.args)
			if tt.wantErr != "" {
				assert.EqualError(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.wantFormat, opts.ReportFormat)
		})
	}
}

func TestRunScanCommand(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "plugin.php"), []byte("<?php\n$wpdb->posts;\n// end\n"), 0o644))

	Init(&config.Config{})
	scanOptions = RunOptionsScan{ReportFormat: "json"}
	t.Cleanup(func() { scanOptions = RunOptionsScan{} })

	var out bytes.Buffer
	ScanCmd.SetOut(&out)
	t.Cleanup(func() { ScanCmd.SetOut(nil) })

	require.NoError(t, runScanCommand(ScanCmd, []string{root}))

	var result struct {
		Compatible bool `json:"hpos_compatible"`
		Findings   []struct {
			File string `json:"file"`
			Line int    `json:"line"`
		} `json:"findings"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &result))
	require.Len(t, result.Findings, 1)
	assert.Equal(t, "plugin.php", result.Findings[0].File)
	assert.Equal(t, 2, result.Findings[0].Line)
}
