package refresh

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

func TestValidateRefreshArgs(t *testing.T) {
	dir := t.TempDir()
	inputFile := filepath.Join(dir, "targets.yml")
	require.NoError(t, os.WriteFile(inputFile, []byte("targets: []\n"), 0o644))

	tests := []struct {
		name    string
		options RunOptionsRefresh
		args    []string
		wantErr string
	}{
		{
			name:    "Input file",
			options: RunOptionsRefresh{InputFile: inputFile},
		},
		{
			name: "Target paths",
			args: []string{dir},
		},
		{
			name:    "Nothing given",
			wantErr: "either 'input-file' flag or a target path must be specified",
		},
		{
			name:    "Both given",
			options: RunOptionsRefresh{InputFile: inputFile},
			args:    []string{dir},
			wantErr: "you cannot use an 'input-file' flag and a target path at the same time",
		},
		{
			name:    "Input file is a directory",
			options: RunOptionsRefresh{InputFile: dir},
			wantErr: `the 'input-file' flag is invalid: path "` + dir + `" is a directory, not a file`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateRefreshArgs(&tt.options, tt.args)
			if tt.wantErr != "" {
				assert.EqualError(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestRunRefreshCommand(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first")
	second := filepath.Join(dir, "second")
	require.NoError(t, os.MkdirAll(first, 0o755))
	require.NoError(t, os.MkdirAll(second, 0o755))

	Init(&config.Config{})
	refreshOptions = RunOptionsRefresh{}

	var out bytes.Buffer
	RefreshCmd.SetOut(&out)
	t.Cleanup(func() { RefreshCmd.SetOut(nil) })

	require.NoError(t, runRefreshCommand(RefreshCmd, []string{first, second, filepath.Join(dir, "missing")}))

	var result struct {
		RefreshedCount int      `json:"refreshed_count"`
		Skipped        []string `json:"skipped"`
		Message        string   `json:"message"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &result))
	assert.Equal(t, 2, result.RefreshedCount)
	assert.Len(t, result.Skipped, 1)
	assert.Equal(t, "Compatibility cache refreshed successfully.", result.Message)
}
