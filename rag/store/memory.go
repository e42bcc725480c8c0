// Package store holds VectorStore implementations.
package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/nikolajIvanov/langchain-crash-course/rag"
)

// InMemoryVectorStore keeps documents in insertion order in memory.
type InMemoryVectorStore struct {
	mu    sync.RWMutex
	docs  []rag.Document
	index map[string]int
}

var _ rag.VectorStore = (*InMemoryVectorStore)(nil)

func NewInMemoryVectorStore() *InMemoryVectorStore {
	return &InMemoryVectorStore{index: make(map[string]int)}
}

func (s *InMemoryVectorStore) Upsert(_ context.Context, docs []rag.Document) error {
	for _, d := range docs {
		if d.ID == "" {
			return fmt.Errorf("document has no id")
		}
		if len(d.Embedding) == 0 {
			return fmt.Errorf("document %s has no embedding", d.ID)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range docs {
		if i, ok := s.index[d.ID]; ok {
			s.docs[i] = d
			continue
		}
		s.index[d.ID] = len(s.docs)
		s.docs = append(s.docs, d)
	}
	return nil
}

func (s *InMemoryVectorStore) Query(_ context.Context, vector []float32, k int, minScore float64) ([]rag.SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return rag.Rank(s.docs, vector, k, minScore)
}

// Len returns the number of stored documents.
func (s *InMemoryVectorStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}
