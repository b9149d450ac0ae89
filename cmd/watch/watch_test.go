package watch

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scan-io-git/hposcan/internal/config"
)

func TestValidateWatchArgs(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "main.php")
	require.NoError(t, os.WriteFile(file, []byte("<?php\n"), 0o644))

	tests := []struct {
		name    string
		options RunOptionsWatch
		args    []string
		wantErr string
	}{
		{
			name: "Valid directory",
			args: []string{dir},
		},
		{
			name:    "Valid metrics address",
			options: RunOptionsWatch{MetricsAddr: "127.0.0.1:9102"},
			args:    []string{dir},
		},
		{
			name:    "No target",
			wantErr: "exactly one target directory must be specified",
		},
		{
			name:    "File target",
			args:    []string{file},
			wantErr: "the target path must be a directory: " + file,
		},
		{
			name:    "Unknown format",
			options: RunOptionsWatch{ReportFormat: "html"},
			args:    []string{dir},
			wantErr: "the 'format' flag must be one of json, sarif, text",
		},
		{
			name:    "Bad metrics address",
			options: RunOptionsWatch{MetricsAddr: "localhost"},
			args:    []string{dir},
			wantErr: "the 'metrics-addr' flag is invalid: address localhost: missing port in address",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateWatchArgs(&tt.options, tt.args)
			if tt.wantErr != "" {
				assert.EqualError(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

// syncBuffer guards a bytes.Buffer written from the watch goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestRunWatchCommandRescansOnChange(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "main.php"), []byte("<?php\n"), 0o644))

	Init(&config.Config{})
	watchOptions = RunOptionsWatch{ReportFormat: "text", Debounce: 50 * time.Millisecond}
	t.Cleanup(func() { watchOptions = RunOptionsWatch{} })

	out := &syncBuffer{}
	WatchCmd.SetOut(out)
	t.Cleanup(func() { WatchCmd.SetOut(nil) })

	ctx, cancel := context.WithCancel(context.Background())
	WatchCmd.SetContext(ctx)
	done := make(chan error, 1)
	go func() { done <- runWatchCommand(WatchCmd, []string{root}) }()

	assert.Eventually(t, func() bool { return strings.Contains(out.String(), "No issues found") }, 2*time.Second, 20*time.Millisecond)

	// The initial scan must finish before the watch registers the tree.
	time.Sleep(200 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(root, "orders.php"), []byte("<?php\n$wpdb->posts;\n"), 0o644))
	assert.Eventually(t, func() bool { return strings.Contains(out.String(), "#### Path: orders.php") }, 3*time.Second, 20*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}
