package adapter_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/magpielabs/magpie/pkg/adapter"
)

func TestFetchExtractsText(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(`<!doctype html>
<html>
<head><title>Ignored</title><style>body { color: red }</style></head>
<body>
<script>var hidden = "should not appear";</script>
<h1>Tokio</h1>
<p>Tokio is an asynchronous runtime for the Rust programming language.</p>
</body>
</html>`))
	}))
	defer ts.Close()

	fetcher := adapter.NewHTTPFetcher()
	text, err := fetcher.Fetch(context.Background(), ts.URL)
	gt.NoError(t, err)
	gt.S(t, text).Contains("Tokio is an asynchronous runtime")
	gt.S(t, text).NotContains("should not appear")
	gt.S(t, text).NotContains("color: red")
}

func TestFetchPlainText(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("  plain content  "))
	}))
	defer ts.Close()

	fetcher := adapter.NewHTTPFetcher()
	text, err := fetcher.Fetch(context.Background(), ts.URL)
	gt.NoError(t, err)
	gt.Equal(t, text, "plain content")
}

func TestFetchNon200(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer ts.Close()

	fetcher := adapter.NewHTTPFetcher()
	_, err := fetcher.Fetch(context.Background(), ts.URL)
	gt.Error(t, err)
}

func TestFetchTimeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte("late"))
	}))
	defer ts.Close()

	fetcher := adapter.NewHTTPFetcher(adapter.WithFetchTimeout(20 * time.Millisecond))
	_, err := fetcher.Fetch(context.Background(), ts.URL)
	gt.Error(t, err)
}

func TestFetchBoundedBody(t *testing.T) {
	big := strings.Repeat("a", 2*1024*1024)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte(big))
	}))
	defer ts.Close()

	fetcher := adapter.NewHTTPFetcher()
	text, err := fetcher.Fetch(context.Background(), ts.URL)
	gt.NoError(t, err)
	if len(text) > 512*1024 {
		t.Errorf("body not bounded: got %d bytes", len(text))
	}
}
