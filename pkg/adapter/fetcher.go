package adapter

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/net/html"
)

// PageFetcher retrieves one web page and returns its readable text.
// The orchestrator treats any error as empty content for that page.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

const (
	defaultFetchTimeout = 20 * time.Second
	// maxPageBytes caps how much of a response body is read. Pages are only
	// raw material for distillation, so a hard bound is fine.
	maxPageBytes = 512 * 1024

	fetcherUserAgent = "magpie/1.0 (+https://github.com/magpielabs/magpie)"
)

// HTTPFetcher implements PageFetcher with a bounded, timeout-guarded HTTP GET
// followed by HTML text extraction.
type HTTPFetcher struct {
	client *http.Client
}

type FetcherOption func(*HTTPFetcher)

// WithFetchTimeout overrides the per-page timeout
func WithFetchTimeout(d time.Duration) FetcherOption {
	return func(f *HTTPFetcher) {
		f.client.Timeout = d
	}
}

func NewHTTPFetcher(opts ...FetcherOption) *HTTPFetcher {
	f := &HTTPFetcher{
		client: &http.Client{Timeout: defaultFetchTimeout},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", goerr.Wrap(err, "failed to build page request", goerr.V("url", url))
	}
	req.Header.Set("User-Agent", fetcherUserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", goerr.Wrap(err, "page fetch failed", goerr.V("url", url))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", goerr.New("page returned non-200",
			goerr.V("url", url), goerr.V("status", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", goerr.Wrap(err, "failed to read page body", goerr.V("url", url))
	}

	contentType := resp.Header.Get("Content-Type")
	if strings.Contains(contentType, "text/html") || looksLikeHTML(body) {
		return extractText(body), nil
	}
	return strings.TrimSpace(string(body)), nil
}

func looksLikeHTML(body []byte) bool {
	head := strings.ToLower(string(body[:min(len(body), 256)]))
	return strings.Contains(head, "<html") || strings.Contains(head, "<!doctype html")
}

// extractText walks the HTML token stream and collects visible text,
// skipping script, style and other non-content subtrees.
func extractText(body []byte) string {
	skip := map[string]bool{
		"script":   true,
		"style":    true,
		"noscript": true,
		"head":     true,
		"svg":      true,
	}

	z := html.NewTokenizer(strings.NewReader(string(body)))
	var sb strings.Builder
	depth := 0 // nesting depth inside skipped elements

	for {
		switch z.Next() {
		case html.ErrorToken:
			return collapseWhitespace(sb.String())
		case html.StartTagToken:
			name, _ := z.TagName()
			if skip[string(name)] {
				depth++
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if skip[string(name)] && depth > 0 {
				depth--
			}
		case html.TextToken:
			if depth == 0 {
				if text := strings.TrimSpace(string(z.Text())); text != "" {
					sb.WriteString(text)
					sb.WriteByte(' ')
				}
			}
		}
	}
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
