package adapter

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/m-mizutani/goerr/v2"
	"github.com/magpielabs/magpie/pkg/model"
)

// SearchProvider is the web search backend consumed by the learning pipeline.
// The orchestrator treats any error as an empty result set.
type SearchProvider interface {
	Search(ctx context.Context, query string, limit int) ([]model.SearchResult, error)
}

const defaultBraveEndpoint = "https://api.search.brave.com/res/v1/web/search"

// BraveSearch implements SearchProvider on the Brave Search API
type BraveSearch struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

type BraveOption func(*BraveSearch)

// WithBraveEndpoint overrides the API endpoint, mainly for tests
func WithBraveEndpoint(endpoint string) BraveOption {
	return func(b *BraveSearch) {
		b.endpoint = endpoint
	}
}

// WithBraveHTTPClient overrides the HTTP client
func WithBraveHTTPClient(client *http.Client) BraveOption {
	return func(b *BraveSearch) {
		b.client = client
	}
}

func NewBraveSearch(apiKey string, opts ...BraveOption) *BraveSearch {
	b := &BraveSearch{
		apiKey:   apiKey,
		endpoint: defaultBraveEndpoint,
		client:   http.DefaultClient,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *BraveSearch) Search(ctx context.Context, query string, limit int) ([]model.SearchResult, error) {
	u, err := url.Parse(b.endpoint)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid brave endpoint", goerr.V("endpoint", b.endpoint))
	}
	q := u.Query()
	q.Set("q", query)
	q.Set("count", strconv.Itoa(limit))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build brave request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", b.apiKey)

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "brave request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, goerr.New("brave returned non-200",
			goerr.V("status", resp.StatusCode), goerr.V("body", string(body)))
	}

	var parsed struct {
		Web struct {
			Results []struct {
				Title       string `json:"title"`
				URL         string `json:"url"`
				Description string `json:"description"`
			} `json:"results"`
		} `json:"web"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, goerr.Wrap(err, "failed to decode brave response")
	}

	results := make([]model.SearchResult, 0, len(parsed.Web.Results))
	for _, r := range parsed.Web.Results {
		results = append(results, model.SearchResult{
			Title:   r.Title,
			URL:     r.URL,
			Snippet: r.Description,
		})
		if len(results) >= limit {
			break
		}
	}
	return results, nil
}

// SearXNG implements SearchProvider against a self-hosted SearXNG instance
// with its JSON output format enabled.
type SearXNG struct {
	baseURL string
	client  *http.Client
}

type SearXNGOption func(*SearXNG)

// WithSearXNGHTTPClient overrides the HTTP client
func WithSearXNGHTTPClient(client *http.Client) SearXNGOption {
	return func(s *SearXNG) {
		s.client = client
	}
}

func NewSearXNG(baseURL string, opts ...SearXNGOption) *SearXNG {
	s := &SearXNG{
		baseURL: baseURL,
		client:  http.DefaultClient,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *SearXNG) Search(ctx context.Context, query string, limit int) ([]model.SearchResult, error) {
	u, err := url.Parse(s.baseURL)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid searxng base URL", goerr.V("url", s.baseURL))
	}
	u = u.JoinPath("search")
	q := u.Query()
	q.Set("q", query)
	q.Set("format", "json")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build searxng request")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "searxng request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, goerr.New("searxng returned non-200", goerr.V("status", resp.StatusCode))
	}

	var parsed struct {
		Results []struct {
			Title   string `json:"title"`
			URL     string `json:"url"`
			Content string `json:"content"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, goerr.Wrap(err, "failed to decode searxng response")
	}

	results := make([]model.SearchResult, 0, limit)
	for _, r := range parsed.Results {
		results = append(results, model.SearchResult{
			Title:   r.Title,
			URL:     r.URL,
			Snippet: r.Content,
		})
		if len(results) >= limit {
			break
		}
	}
	return results, nil
}
