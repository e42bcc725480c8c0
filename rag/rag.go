package rag

import (
	"context"
	"errors"
	"math"
	"sort"
)

// ErrInvalidK is returned by Query when k is not positive.
var ErrInvalidK = errors.New("k must be positive")

// Document is a chunk of text with its embedding.
type Document struct {
	ID        string         `json:"id"`
	Content   string         `json:"content"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Embedding []float32      `json:"-"`
}

// SearchResult is a document ranked against a query vector.
type SearchResult struct {
	Document Document
	Score    float64
}

// VectorStore keeps embedded documents and ranks them by cosine
// similarity.
type VectorStore interface {
	// Upsert adds documents, replacing any with the same ID. Every document
	// must carry an embedding.
	Upsert(ctx context.Context, docs []Document) error

	// Query returns at most k documents ordered by descending score.
	// Documents scoring below minScore are dropped.
	Query(ctx context.Context, vector []float32, k int, minScore float64) ([]SearchResult, error)
}

// CosineSimilarity returns the cosine of the angle between a and b, or 0
// when the lengths differ or either vector is zero.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Rank scores docs against vector and keeps the best k at or above
// minScore. Ties keep the input order.
func Rank(docs []Document, vector []float32, k int, minScore float64) ([]SearchResult, error) {
	if k <= 0 {
		return nil, ErrInvalidK
	}

	results := make([]SearchResult, 0, len(docs))
	for _, d := range docs {
		score := CosineSimilarity(vector, d.Embedding)
		if score < minScore {
			continue
		}
		results = append(results, SearchResult{Document: d, Score: score})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}
