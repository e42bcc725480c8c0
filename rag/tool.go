package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tmc/langchaingo/schema"

	"github.com/nikolajIvanov/langchain-crash-course/tool"
)

// RetrievalTool lets an agent search the ingested documents.
type RetrievalTool struct {
	retriever schema.Retriever
}

var _ tool.Tool = (*RetrievalTool)(nil)

func NewRetrievalTool(retriever schema.Retriever) *RetrievalTool {
	return &RetrievalTool{retriever: retriever}
}

func (r *RetrievalTool) Name() string { return "search_documents" }

func (r *RetrievalTool) Description() string {
	return "Searches the ingested documents and returns the passages most relevant to the query."
}

func (r *RetrievalTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{
				"type":        "string",
				"description": "what to look up in the documents",
			},
		},
		"required": []string{"query"},
	}
}

func (r *RetrievalTool) Call(ctx context.Context, arguments string) (string, error) {
	query := arguments
	if gjson.Valid(arguments) {
		query = gjson.Get(arguments, "query").String()
	}
	if strings.TrimSpace(query) == "" {
		return "", fmt.Errorf("query is required")
	}

	docs, err := r.retriever.GetRelevantDocuments(ctx, query)
	if err != nil {
		return "", fmt.Errorf("failed to retrieve documents: %w", err)
	}
	if len(docs) == 0 {
		return "No relevant documents found", nil
	}

	var sb strings.Builder
	for i, d := range docs {
		source, _ := d.Metadata["source"].(string)
		if source == "" {
			source = "unknown"
		}
		fmt.Fprintf(&sb, "Document %d (source: %s):\n%s\n\n", i+1, source, d.PageContent)
	}
	return strings.TrimSpace(sb.String()), nil
}
