package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikolajIvanov/langchain-crash-course/rag"
)

func testDocs() []rag.Document {
	return []rag.Document{
		{ID: "a", Content: "alpha", Metadata: map[string]any{"source": "x.txt"}, Embedding: []float32{1, 0, 0}},
		{ID: "b", Content: "beta", Embedding: []float32{0, 1, 0}},
		{ID: "c", Content: "gamma", Embedding: []float32{0.7, 0.7, 0}},
	}
}

func exerciseStore(t *testing.T, s rag.VectorStore) {
	ctx := context.Background()
	require.NoError(t, s.Upsert(ctx, testDocs()))

	results, err := s.Query(ctx, []float32{1, 0, 0}, 2, 0)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "a", results[0].Document.ID)
	assert.Equal(t, "alpha", results[0].Document.Content)
	assert.Equal(t, "x.txt", results[0].Document.Metadata["source"])
	assert.InDelta(t, 1.0, results[0].Score, 1e-6)
	assert.Equal(t, "c", results[1].Document.ID)

	results, err = s.Query(ctx, []float32{1, 0, 0}, 10, 0.5)
	require.NoError(t, err)
	assert.Len(t, results, 2)

	require.NoError(t, s.Upsert(ctx, []rag.Document{{ID: "b", Content: "beta v2", Embedding: []float32{1, 0, 0}}}))
	results, err = s.Query(ctx, []float32{1, 0, 0}, 3, 0.99)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "a", results[0].Document.ID, "ties keep insertion order")
	assert.Equal(t, "beta v2", results[1].Document.Content)

	_, err = s.Query(ctx, []float32{1, 0, 0}, 0, 0)
	assert.ErrorIs(t, err, rag.ErrInvalidK)

	assert.Error(t, s.Upsert(ctx, []rag.Document{{ID: "d", Content: "no vector"}}))
}

func TestInMemoryVectorStore(t *testing.T) {
	s := NewInMemoryVectorStore()
	exerciseStore(t, s)
	assert.Equal(t, 3, s.Len())
}

func TestSQLiteVectorStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vectors.db")
	s, err := NewSQLiteVectorStore(SQLiteOptions{Path: path})
	require.NoError(t, err)
	exerciseStore(t, s)
	require.NoError(t, s.Close())

	reopened, err := NewSQLiteVectorStore(SQLiteOptions{Path: path})
	require.NoError(t, err)
	defer reopened.Close()

	n, err := reopened.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	results, err := reopened.Query(context.Background(), []float32{0.7, 0.7, 0}, 1, 0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "c", results[0].Document.ID)
}

func TestVectorRoundTrip(t *testing.T) {
	v := []float32{0, -1.5, 3.25}
	got, err := decodeVector(encodeVector(v))
	require.NoError(t, err)
	assert.Equal(t, v, got)

	_, err = decodeVector([]byte{1, 2, 3})
	assert.Error(t, err)
}
