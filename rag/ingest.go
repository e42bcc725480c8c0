package rag

import (
	"context"
	"fmt"
	"io"

	"github.com/tmc/langchaingo/documentloaders"
	"github.com/tmc/langchaingo/textsplitter"
	"github.com/tmc/langchaingo/vectorstores"
)

const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 50
)

// DefaultSplitter splits on paragraphs, lines and words into chunks of
// DefaultChunkSize characters.
func DefaultSplitter() textsplitter.TextSplitter {
	return textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(DefaultChunkSize),
		textsplitter.WithChunkOverlap(DefaultChunkOverlap),
	)
}

// Ingest splits the text read from r into chunks and adds them to store.
// Each chunk carries its source name and chunk index as metadata. A nil
// splitter means DefaultSplitter.
func Ingest(ctx context.Context, r io.Reader, source string, splitter textsplitter.TextSplitter, store vectorstores.VectorStore) (int, error) {
	if splitter == nil {
		splitter = DefaultSplitter()
	}

	docs, err := documentloaders.NewText(r).LoadAndSplit(ctx, splitter)
	if err != nil {
		return 0, fmt.Errorf("failed to load %s: %w", source, err)
	}
	if len(docs) == 0 {
		return 0, nil
	}

	for i := range docs {
		docs[i].Metadata = map[string]any{
			"source": source,
			"chunk":  i,
		}
	}
	if _, err := store.AddDocuments(ctx, docs); err != nil {
		return 0, fmt.Errorf("failed to store chunks of %s: %w", source, err)
	}
	return len(docs), nil
}
