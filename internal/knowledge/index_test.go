package knowledge

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/compliance-cli/internal/model"
)

func testChunks() []model.DocumentChunk {
	return []model.DocumentChunk{
		{ID: "a", DocumentName: "doc", Index: 0, Text: "alpha", Embedding: []float32{1, 0, 0}},
		{ID: "b", DocumentName: "doc", Index: 1, Text: "beta", Embedding: []float32{0, 1, 0}},
		{ID: "c", DocumentName: "doc", Index: 2, Text: "gamma", Embedding: []float32{0.7, 0.7, 0}},
	}
}

func TestMemoryIndexReplaceAndSearch(t *testing.T) {
	ctx := context.Background()
	idx := NewMemoryIndex()

	require.NoError(t, idx.Replace(ctx, testChunks()))

	n, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	hits, err := idx.Search(ctx, []float32{1, 0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "alpha", hits[0].Text)
	assert.Equal(t, "gamma", hits[1].Text)

	// Replace evicts the previous set entirely.
	require.NoError(t, idx.Replace(ctx, testChunks()[:1]))
	n, err = idx.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, idx.Clear(ctx))
	n, err = idx.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestMemoryIndexSearchKBeyondSize(t *testing.T) {
	ctx := context.Background()
	idx := NewMemoryIndex()
	require.NoError(t, idx.Replace(ctx, testChunks()[:2]))

	hits, err := idx.Search(ctx, []float32{1, 0, 0}, 10)
	require.NoError(t, err)
	assert.Len(t, hits, 2)
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity([]float32{1, 2}, []float32{2, 4}), 1e-9)
	assert.InDelta(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.Zero(t, cosineSimilarity([]float32{1, 0}, []float32{1}))
	assert.Zero(t, cosineSimilarity(nil, nil))
	assert.Zero(t, cosineSimilarity([]float32{0, 0}, []float32{1, 1}))
}

func TestSQLiteIndexRoundTrip(t *testing.T) {
	ctx := context.Background()
	idx, err := NewSQLiteIndex(filepath.Join(t.TempDir(), "kb.db"))
	require.NoError(t, err)
	defer idx.Close()

	require.NoError(t, idx.Replace(ctx, testChunks()))

	n, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	hits, err := idx.Search(ctx, []float32{0, 1, 0}, 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "beta", hits[0].Text)
	assert.Equal(t, []float32{0, 1, 0}, hits[0].Embedding)

	require.NoError(t, idx.Clear(ctx))
	n, err = idx.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSQLiteIndexPersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "kb.db")

	idx, err := NewSQLiteIndex(path)
	require.NoError(t, err)
	require.NoError(t, idx.Replace(ctx, testChunks()))
	require.NoError(t, idx.Close())

	reopened, err := NewSQLiteIndex(path)
	require.NoError(t, err)
	defer reopened.Close()

	n, err := reopened.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestVectorEncoding(t *testing.T) {
	v := []float32{1.5, -2.25, 0}
	assert.Equal(t, v, decodeVector(encodeVector(v)))
	assert.Empty(t, decodeVector(nil))
}
