package tool

import (
	"context"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tmc/langchaingo/tools"
	"github.com/tmc/langchaingo/tools/duckduckgo"
)

var invalidNameChars = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// LangChainTool exposes a langchaingo tools.Tool, which takes a plain string,
// as a Tool with a single "input" argument.
type LangChainTool struct {
	inner tools.Tool
	name  string
}

var _ Tool = (*LangChainTool)(nil)

// FromLangChain wraps t. Characters the completion APIs reject in function
// names are replaced, so "DuckDuckGo Search" becomes "DuckDuckGo_Search".
func FromLangChain(t tools.Tool) *LangChainTool {
	name := invalidNameChars.ReplaceAllString(strings.TrimSpace(t.Name()), "_")
	if len(name) > 64 {
		name = name[:64]
	}
	return &LangChainTool{inner: t, name: name}
}

func (t *LangChainTool) Name() string        { return t.name }
func (t *LangChainTool) Description() string { return t.inner.Description() }

func (t *LangChainTool) Parameters() map[string]any {
	return objectSchema(map[string]any{
		"input": map[string]any{
			"type":        "string",
			"description": "the input to the tool",
		},
	}, "input")
}

// Call passes the "input" argument through. Arguments that are not a JSON
// object with that field are passed as-is.
func (t *LangChainTool) Call(ctx context.Context, arguments string) (string, error) {
	return t.inner.Call(ctx, inputArgument(arguments))
}

func inputArgument(arguments string) string {
	if gjson.Valid(arguments) {
		if v := gjson.Get(arguments, "input"); v.Exists() {
			return v.String()
		}
	}
	return arguments
}

// Calculator is langchaingo's starlark expression evaluator.
func Calculator() *LangChainTool {
	return FromLangChain(tools.Calculator{})
}

// DuckDuckGo is a keyless web search.
func DuckDuckGo(maxResults int) (*LangChainTool, error) {
	ddg, err := duckduckgo.New(maxResults, duckduckgo.DefaultUserAgent)
	if err != nil {
		return nil, err
	}
	return FromLangChain(ddg), nil
}

// TextSearcher turns a langchaingo search tool, which answers with one block
// of text, into a Searcher returning that block as a single result.
type TextSearcher struct {
	inner tools.Tool
}

var _ Searcher = (*TextSearcher)(nil)

func NewTextSearcher(t tools.Tool) *TextSearcher {
	return &TextSearcher{inner: t}
}

func (s *TextSearcher) Search(ctx context.Context, query string) ([]SearchResult, error) {
	out, err := s.inner.Call(ctx, query)
	if err != nil {
		return nil, err
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return nil, nil
	}
	return []SearchResult{{Title: query, Content: out}}, nil
}

// DuckDuckGoSearcher is DuckDuckGo as a Searcher for the research loop.
func DuckDuckGoSearcher(maxResults int) (*TextSearcher, error) {
	ddg, err := duckduckgo.New(maxResults, duckduckgo.DefaultUserAgent)
	if err != nil {
		return nil, err
	}
	return NewTextSearcher(ddg), nil
}
