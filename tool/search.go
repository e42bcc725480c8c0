package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// SearchResult is one hit returned by a web search backend.
type SearchResult struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score,omitempty"`
}

// Searcher runs a single web query.
type Searcher interface {
	Search(ctx context.Context, query string) ([]SearchResult, error)
}

func formatResults(results []SearchResult) string {
	if len(results) == 0 {
		return "No results found"
	}
	var sb strings.Builder
	for i, r := range results {
		fmt.Fprintf(&sb, "%d. Title: %s\nURL: %s\nDescription: %s\n\n", i+1, r.Title, r.URL, r.Content)
	}
	return sb.String()
}

func queryArgument(arguments string) string {
	if gjson.Valid(arguments) {
		for _, key := range []string{"query", "input"} {
			if v := gjson.Get(arguments, key); v.Exists() {
				return v.String()
			}
		}
	}
	return arguments
}

func querySchema() map[string]any {
	return objectSchema(map[string]any{
		"query": map[string]any{
			"type":        "string",
			"description": "the search query",
		},
	}, "query")
}

// Research answers the search_queries of a structured research answer by
// running each query through a Searcher. The result is a JSON object keyed
// by query.
type Research struct {
	name     string
	searcher Searcher
}

var _ Tool = (*Research)(nil)

// NewResearch binds searcher to the tool name the model calls, for example
// "AnswerQuestion" or "ReviseAnswer".
func NewResearch(name string, searcher Searcher) *Research {
	return &Research{name: name, searcher: searcher}
}

func (r *Research) Name() string { return r.name }

func (r *Research) Description() string {
	return "Runs the search queries proposed in " + r.name + " and returns the results per query."
}

func (r *Research) Parameters() map[string]any {
	return objectSchema(map[string]any{
		"search_queries": map[string]any{
			"type":        "array",
			"items":       map[string]any{"type": "string"},
			"description": "queries to research",
		},
	}, "search_queries")
}

// Call fails when the arguments carry no queries. A failing query is
// recorded under its key and does not stop the others.
func (r *Research) Call(ctx context.Context, arguments string) (string, error) {
	if !gjson.Valid(arguments) {
		return "", fmt.Errorf("arguments are not valid JSON")
	}
	queries := gjson.Get(arguments, "search_queries").Array()
	if len(queries) == 0 {
		return "", fmt.Errorf("no search_queries in arguments")
	}

	out := make(map[string]any, len(queries))
	for _, q := range queries {
		query := q.String()
		results, err := r.searcher.Search(ctx, query)
		if err != nil {
			out[query] = fmt.Sprintf("Error: %v", err)
			continue
		}
		out[query] = results
	}

	data, err := json.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("failed to encode results: %w", err)
	}
	return string(data), nil
}
