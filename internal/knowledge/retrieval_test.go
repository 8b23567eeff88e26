package knowledge

import (
	"context"
	"strings"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/compliance-cli/internal/chunker"
)

// fakeEmbedder assigns fixed vectors by substring match, so tests can
// steer which chunk ranks highest for a query.
type fakeEmbedder struct {
	vectors map[string][]float32
	err     error
	short   bool
}

func (f *fakeEmbedder) embed(text string) []float32 {
	for key, v := range f.vectors {
		if strings.Contains(text, key) {
			return v
		}
	}
	return []float32{0, 0, 1}
}

func (f *fakeEmbedder) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = f.embed(t)
	}
	if f.short && len(out) > 1 {
		out = out[:1]
	}
	return out, nil
}

func (f *fakeEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.embed(text), nil
}

func newTestStore(e Embedder, opts ...RetrievalOption) *RetrievalStore {
	base := []RetrievalOption{
		WithChunker(chunker.New(chunker.WithChunkSize(40), chunker.WithOverlap(10))),
	}
	return NewRetrievalStore(e, NewMemoryIndex(), append(base, opts...)...)
}

func TestRetrievalSetDocumentIndexesChunks(t *testing.T) {
	s := newTestStore(&fakeEmbedder{})

	text := "Penalty clauses apply here. Drop rate limits follow. Reporting duties close it out."
	info, err := s.SetDocument(context.Background(), text, "trai.txt")
	require.NoError(t, err)

	assert.Equal(t, "trai.txt", info.DocumentName)
	assert.Equal(t, len(text), info.DocumentLength)
	assert.Greater(t, info.ChunksCreated, 1)
	assert.True(t, s.HasDocuments())
}

func TestRetrievalSetDocumentEmpty(t *testing.T) {
	s := newTestStore(&fakeEmbedder{})

	_, err := s.SetDocument(context.Background(), "   \n ", "empty.txt")
	assert.ErrorIs(t, err, ErrNoChunks)
}

func TestRetrievalSetDocumentEmbedderError(t *testing.T) {
	s := newTestStore(&fakeEmbedder{err: eris.New("embeddings down")})

	_, err := s.SetDocument(context.Background(), "some document text", "doc.txt")
	assert.Error(t, err)
	assert.False(t, s.HasDocuments())
}

func TestRetrievalSetDocumentVectorCountMismatch(t *testing.T) {
	s := newTestStore(&fakeEmbedder{short: true})

	text := "First sentence goes here and on. Second sentence extends well past the first chunk end."
	_, err := s.SetDocument(context.Background(), text, "doc.txt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vectors")
}

func TestRetrievalGetContextRanksByQuery(t *testing.T) {
	e := &fakeEmbedder{vectors: map[string][]float32{
		"penalty": {1, 0, 0},
		"drop":    {0, 1, 0},
	}}
	s := newTestStore(e, WithMaxResults(1))

	text := "The penalty schedule is strict. Meanwhile drop rates are measured quarterly here."
	_, err := s.SetDocument(context.Background(), text, "trai.txt")
	require.NoError(t, err)

	got := s.GetContext(context.Background(), "what is the penalty")
	assert.Contains(t, got, "penalty")

	got = s.GetContext(context.Background(), "about drop measurement")
	assert.Contains(t, got, "drop")
}

func TestRetrievalGetContextEmptyIndex(t *testing.T) {
	s := newTestStore(&fakeEmbedder{})
	assert.Empty(t, s.GetContext(context.Background(), "anything"))
}

func TestRetrievalGetContextTruncates(t *testing.T) {
	e := &fakeEmbedder{}
	s := NewRetrievalStore(e, NewMemoryIndex(),
		WithChunker(chunker.New(chunker.WithChunkSize(2000), chunker.WithOverlap(100))),
		WithMaxResults(3),
	)

	_, err := s.SetDocument(context.Background(), strings.Repeat("clause text here. ", 400), "big.txt")
	require.NoError(t, err)

	got := s.GetContext(context.Background(), "clause")
	assert.LessOrEqual(t, len(got), retrievalMaxContextChars+len("\n\n[Context truncated...]"))
	assert.Contains(t, got, "[Context truncated...]")
}

func TestRetrievalSearchDegradesOnEmbedError(t *testing.T) {
	e := &fakeEmbedder{}
	s := newTestStore(e)

	_, err := s.SetDocument(context.Background(), "some document text to index", "doc.txt")
	require.NoError(t, err)

	e.err = eris.New("embeddings down")
	assert.Nil(t, s.Search(context.Background(), "query"))
	assert.Empty(t, s.GetContext(context.Background(), "query"))
}

func TestRetrievalClear(t *testing.T) {
	s := newTestStore(&fakeEmbedder{})

	_, err := s.SetDocument(context.Background(), "some document text to index", "doc.txt")
	require.NoError(t, err)
	require.True(t, s.HasDocuments())

	s.Clear()
	assert.False(t, s.HasDocuments())
}
