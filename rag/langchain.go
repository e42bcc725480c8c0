package rag

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/vectorstores"
)

// LangChainStore exposes a VectorStore as a langchaingo vector store, so
// vectorstores.ToRetriever and the langchaingo chains can use it.
type LangChainStore struct {
	store    VectorStore
	embedder embeddings.Embedder
}

var _ vectorstores.VectorStore = (*LangChainStore)(nil)

func NewLangChainStore(store VectorStore, embedder embeddings.Embedder) *LangChainStore {
	return &LangChainStore{store: store, embedder: embedder}
}

// AddDocuments embeds docs and upserts them under fresh ids. An "id"
// metadata value is used as the id instead when present.
func (l *LangChainStore) AddDocuments(ctx context.Context, docs []schema.Document, options ...vectorstores.Option) ([]string, error) {
	opts := l.options(options)
	if opts.Embedder == nil {
		return nil, fmt.Errorf("no embedder configured")
	}

	var kept []schema.Document
	for _, d := range docs {
		if opts.Deduplicater != nil && opts.Deduplicater(ctx, d) {
			continue
		}
		kept = append(kept, d)
	}
	if len(kept) == 0 {
		return nil, nil
	}

	texts := make([]string, len(kept))
	for i, d := range kept {
		texts[i] = d.PageContent
	}
	vectors, err := opts.Embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed documents: %w", err)
	}
	if len(vectors) != len(kept) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d documents", len(vectors), len(kept))
	}

	out := make([]Document, len(kept))
	ids := make([]string, len(kept))
	for i, d := range kept {
		id, _ := d.Metadata["id"].(string)
		if id == "" {
			id = uuid.NewString()
		}
		ids[i] = id
		out[i] = Document{ID: id, Content: d.PageContent, Metadata: d.Metadata, Embedding: vectors[i]}
	}
	if err := l.store.Upsert(ctx, out); err != nil {
		return nil, err
	}
	return ids, nil
}

// SimilaritySearch honours WithScoreThreshold and WithEmbedder. A
// map[string]any filter keeps only documents whose metadata holds equal
// values.
func (l *LangChainStore) SimilaritySearch(ctx context.Context, query string, numDocuments int, options ...vectorstores.Option) ([]schema.Document, error) {
	opts := l.options(options)
	if opts.Embedder == nil {
		return nil, fmt.Errorf("no embedder configured")
	}

	vector, err := opts.Embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	results, err := l.store.Query(ctx, vector, numDocuments, float64(opts.ScoreThreshold))
	if err != nil {
		return nil, err
	}

	filter, _ := opts.Filters.(map[string]any)
	docs := make([]schema.Document, 0, len(results))
	for _, r := range results {
		if !matches(r.Document.Metadata, filter) {
			continue
		}
		docs = append(docs, schema.Document{
			PageContent: r.Document.Content,
			Metadata:    r.Document.Metadata,
			Score:       float32(r.Score),
		})
	}
	return docs, nil
}

func (l *LangChainStore) options(options []vectorstores.Option) vectorstores.Options {
	opts := vectorstores.Options{Embedder: l.embedder}
	for _, opt := range options {
		opt(&opts)
	}
	return opts
}

func matches(metadata, filter map[string]any) bool {
	for k, v := range filter {
		if mv, ok := metadata[k]; !ok || mv != v {
			return false
		}
	}
	return true
}
