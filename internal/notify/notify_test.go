package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scan-io-git/hposcan/internal/config"
	"github.com/scan-io-git/hposcan/internal/scanner"
	"github.com/scan-io-git/hposcan/internal/service"
)

type recorded struct {
	event string
	token string
	body  map[string]interface{}
}

func newServer(t *testing.T, status int) (*httptest.Server, func() []recorded) {
	t.Helper()
	var (
		mu   sync.Mutex
		reqs []recorded
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&body)
		mu.Lock()
		reqs = append(reqs, recorded{
			event: r.Header.Get("X-Hposcan-Event"),
			token: r.Header.Get("X-Token"),
			body:  body,
		})
		mu.Unlock()
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv, func() []recorded {
		mu.Lock()
		defer mu.Unlock()
		return append([]recorded(nil), reqs...)
	}
}

func webhookConfig(url string) *config.Webhook {
	return &config.Webhook{
		URL:              url,
		RetryCount:       1,
		RetryWaitTime:    time.Millisecond,
		RetryMaxWaitTime: 2 * time.Millisecond,
		Timeout:          2 * time.Second,
		Headers:          map[string]string{"X-Token": "secret"},
	}
}

func TestWebhookScanCompleted(t *testing.T) {
	srv, requests := newServer(t, http.StatusNoContent)
	w, err := NewWebhook(webhookConfig(srv.URL), nil)
	require.NoError(t, err)

	w.ScanCompleted(context.Background(), &scanner.ScanResult{
		ID:         "abc",
		Compatible: true,
		Findings:   []scanner.Finding{{File: "a.php", Line: 2, Term: "wpdb"}},
	})

	reqs := requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, EventScanCompleted, reqs[0].event)
	assert.Equal(t, "secret", reqs[0].token)
	assert.Equal(t, EventScanCompleted, reqs[0].body["event"])

	payload, ok := reqs[0].body["payload"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "abc", payload["id"])
	assert.Equal(t, true, payload["hpos_compatible"])
}

func TestWebhookCacheRefreshed(t *testing.T) {
	srv, requests := newServer(t, http.StatusOK)
	w, err := NewWebhook(webhookConfig(srv.URL), nil)
	require.NoError(t, err)

	w.CacheRefreshed(context.Background(), service.RefreshResult{RefreshedCount: 2})

	reqs := requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, EventCacheRefreshed, reqs[0].event)
	payload := reqs[0].body["payload"].(map[string]interface{})
	assert.Equal(t, float64(2), payload["refreshed_count"])
}

func TestWebhookFailureIsLoggedOnly(t *testing.T) {
	srv, _ := newServer(t, http.StatusInternalServerError)

	var buf bytes.Buffer
	logger := hclog.New(&hclog.LoggerOptions{Output: &buf, Level: hclog.Error})
	w, err := NewWebhook(webhookConfig(srv.URL), logger)
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		w.ScanCompleted(context.Background(), &scanner.ScanResult{ID: "x"})
	})
	assert.Contains(t, buf.String(), "webhook rejected")
}

func TestWebhookUnreachable(t *testing.T) {
	srv, _ := newServer(t, http.StatusOK)
	url := srv.URL
	srv.Close()

	var buf bytes.Buffer
	logger := hclog.New(&hclog.LoggerOptions{Output: &buf, Level: hclog.Error})
	w, err := NewWebhook(webhookConfig(url), logger)
	require.NoError(t, err)

	w.CacheRefreshed(context.Background(), service.RefreshResult{})
	assert.Contains(t, buf.String(), "failed to deliver webhook")
}

func TestNewWebhookRequiresURL(t *testing.T) {
	_, err := NewWebhook(&config.Webhook{}, nil)
	assert.EqualError(t, err, "webhook url is not configured")
	_, err = NewWebhook(nil, nil)
	assert.Error(t, err)
}

func TestLogObserver(t *testing.T) {
	var buf bytes.Buffer
	o := LogObserver{Logger: hclog.New(&hclog.LoggerOptions{Output: &buf, Level: hclog.Info})}

	o.ScanCompleted(context.Background(), &scanner.ScanResult{ID: "id-1", FilesScanned: 3})
	o.CacheRefreshed(context.Background(), service.RefreshResult{RefreshedCount: 4})

	assert.Contains(t, buf.String(), "scan completed")
	assert.Contains(t, buf.String(), "id=id-1")
	assert.Contains(t, buf.String(), "refreshed=4")
}

var _ service.Observer = (*Webhook)(nil)
var _ service.Observer = LogObserver{}
