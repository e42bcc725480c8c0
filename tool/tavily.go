package tool

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
)

// TavilySearch queries the Tavily search API.
type TavilySearch struct {
	APIKey     string
	BaseURL    string
	MaxResults int
	Depth      string
	client     *http.Client
}

var (
	_ Tool     = (*TavilySearch)(nil)
	_ Searcher = (*TavilySearch)(nil)
)

type TavilyOption func(*TavilySearch)

func WithTavilyBaseURL(baseURL string) TavilyOption {
	return func(t *TavilySearch) {
		t.BaseURL = baseURL
	}
}

// WithTavilyMaxResults sets the number of results per query (1-20).
func WithTavilyMaxResults(n int) TavilyOption {
	return func(t *TavilySearch) {
		t.MaxResults = clamp(n, 1, 20)
	}
}

// WithTavilyDepth selects "basic" or "advanced" search.
func WithTavilyDepth(depth string) TavilyOption {
	return func(t *TavilySearch) {
		t.Depth = depth
	}
}

func WithTavilyHTTPClient(c *http.Client) TavilyOption {
	return func(t *TavilySearch) {
		t.client = c
	}
}

// NewTavilySearch falls back to TAVILY_API_KEY when apiKey is empty.
func NewTavilySearch(apiKey string, opts ...TavilyOption) (*TavilySearch, error) {
	if apiKey == "" {
		apiKey = os.Getenv("TAVILY_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("TAVILY_API_KEY not set")
	}

	t := &TavilySearch{
		APIKey:     apiKey,
		BaseURL:    "https://api.tavily.com/search",
		MaxResults: 5,
		Depth:      "basic",
		client:     http.DefaultClient,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

func (t *TavilySearch) Name() string { return "tavily_search" }

func (t *TavilySearch) Description() string {
	return "A search engine optimized for comprehensive, accurate results. " +
		"Useful for answering questions about current events."
}

func (t *TavilySearch) Parameters() map[string]any { return querySchema() }

func (t *TavilySearch) Call(ctx context.Context, arguments string) (string, error) {
	results, err := t.Search(ctx, queryArgument(arguments))
	if err != nil {
		return "", err
	}
	return formatResults(results), nil
}

type tavilyResponse struct {
	Results []SearchResult `json:"results"`
}

func (t *TavilySearch) Search(ctx context.Context, query string) ([]SearchResult, error) {
	body, err := json.Marshal(map[string]any{
		"query":        query,
		"search_depth": t.Depth,
		"max_results":  t.MaxResults,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.BaseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+t.APIKey)

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tavily api returned status: %d", resp.StatusCode)
	}

	var out tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return out.Results, nil
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
