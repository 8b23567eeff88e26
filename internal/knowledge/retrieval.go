package knowledge

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/compliance-cli/internal/chunker"
	"github.com/sells-group/compliance-cli/internal/model"
)

// DefaultMaxResults is the number of chunks returned per query.
const DefaultMaxResults = 3

// retrievalMaxContextChars bounds the joined context handed to the
// model, leaving room for the question and answer.
const retrievalMaxContextChars = 4000

// chunkSeparator joins retrieved chunks in the composed context.
const chunkSeparator = "\n\n---\n\n"

// RetrievalStore embeds document chunks into a vector index and
// retrieves the nearest ones per query.
type RetrievalStore struct {
	embedder   Embedder
	index      Index
	chunker    *chunker.Chunker
	maxResults int
}

// RetrievalOption configures a RetrievalStore.
type RetrievalOption func(*RetrievalStore)

// WithMaxResults sets the number of chunks returned per query.
func WithMaxResults(n int) RetrievalOption {
	return func(s *RetrievalStore) {
		if n > 0 {
			s.maxResults = n
		}
	}
}

// WithChunker sets a custom chunker.
func WithChunker(c *chunker.Chunker) RetrievalOption {
	return func(s *RetrievalStore) {
		if c != nil {
			s.chunker = c
		}
	}
}

// NewRetrievalStore creates a RetrievalStore over the given embedder
// and index.
func NewRetrievalStore(embedder Embedder, index Index, opts ...RetrievalOption) *RetrievalStore {
	s := &RetrievalStore{
		embedder:   embedder,
		index:      index,
		chunker:    chunker.New(),
		maxResults: DefaultMaxResults,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetDocument chunks the text, embeds every chunk in one batched call
// and replaces the whole index with the result. Only one knowledge base
// is active at a time: previous chunks are fully evicted.
func (s *RetrievalStore) SetDocument(ctx context.Context, text, name string) (*IngestInfo, error) {
	texts := s.chunker.Split(text)
	if len(texts) == 0 {
		return nil, ErrNoChunks
	}

	vectors, err := s.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(texts) {
		return nil, eris.Errorf("knowledge: embedder returned %d vectors for %d chunks", len(vectors), len(texts))
	}

	chunks := make([]model.DocumentChunk, len(texts))
	for i, t := range texts {
		chunks[i] = model.DocumentChunk{
			ID:           fmt.Sprintf("%s_chunk_%d_%s", name, i, uuid.NewString()[:8]),
			DocumentName: name,
			Index:        i,
			Text:         t,
			Embedding:    vectors[i],
		}
	}

	if err := s.index.Replace(ctx, chunks); err != nil {
		return nil, err
	}

	zap.L().Info("knowledge: document indexed",
		zap.String("document", name),
		zap.Int("chunks", len(chunks)),
	)

	return &IngestInfo{
		DocumentName:   name,
		DocumentLength: len(text),
		ChunksCreated:  len(chunks),
	}, nil
}

// Search embeds the query and returns up to maxResults chunk texts in
// decreasing relevance order. Lookup failures and an empty index both
// yield an empty result, never an error.
func (s *RetrievalStore) Search(ctx context.Context, query string) []string {
	vector, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		zap.L().Warn("knowledge: query embedding failed", zap.Error(err))
		return nil
	}

	hits, err := s.index.Search(ctx, vector, s.maxResults)
	if err != nil {
		zap.L().Warn("knowledge: index search failed", zap.Error(err))
		return nil
	}

	texts := make([]string, 0, len(hits))
	for _, h := range hits {
		texts = append(texts, h.Text)
	}
	return texts
}

// GetContext joins the retrieved chunks with a visible separator and
// truncates the result to the context limit.
func (s *RetrievalStore) GetContext(ctx context.Context, query string) string {
	chunks := s.Search(ctx, query)
	if len(chunks) == 0 {
		return ""
	}

	joined := strings.Join(chunks, chunkSeparator)
	if len(joined) > retrievalMaxContextChars {
		joined = joined[:retrievalMaxContextChars] + "\n\n[Context truncated...]"
	}
	return joined
}

// HasDocuments reports whether the index holds any chunks.
func (s *RetrievalStore) HasDocuments() bool {
	n, err := s.index.Count(context.Background())
	if err != nil {
		return false
	}
	return n > 0
}

// Clear removes all stored chunks.
func (s *RetrievalStore) Clear() {
	if err := s.index.Clear(context.Background()); err != nil {
		zap.L().Warn("knowledge: clear failed", zap.Error(err))
	}
}
