package knowledge

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/sells-group/compliance-cli/internal/model"
)

// Index stores embedded chunks and answers nearest-neighbour queries.
// The similarity metric is an implementation detail of the index.
type Index interface {
	// Replace atomically evicts all stored chunks and inserts the given
	// ones. The single-active-knowledge-base invariant lives here.
	Replace(ctx context.Context, chunks []model.DocumentChunk) error

	// Search returns up to k chunks ordered by decreasing relevance.
	Search(ctx context.Context, vector []float32, k int) ([]model.DocumentChunk, error)

	// Count returns the number of stored chunks.
	Count(ctx context.Context) (int, error)

	// Clear removes all stored chunks.
	Clear(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// MemoryIndex is an in-process Index using cosine similarity. It is the
// default backend when no persistence path is configured.
type MemoryIndex struct {
	mu     sync.RWMutex
	chunks []model.DocumentChunk
}

// NewMemoryIndex creates an empty in-memory index.
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{}
}

// Replace swaps the stored chunks for the given set.
func (m *MemoryIndex) Replace(_ context.Context, chunks []model.DocumentChunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chunks = append([]model.DocumentChunk(nil), chunks...)
	return nil
}

// Search scores every stored chunk against the query vector and returns
// the top k by cosine similarity.
func (m *MemoryIndex) Search(_ context.Context, vector []float32, k int) ([]model.DocumentChunk, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return rankChunks(m.chunks, vector, k), nil
}

// Count returns the number of stored chunks.
func (m *MemoryIndex) Count(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.chunks), nil
}

// Clear removes all stored chunks.
func (m *MemoryIndex) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chunks = nil
	return nil
}

// Close is a no-op for the in-memory index.
func (m *MemoryIndex) Close() error { return nil }

// rankChunks returns the k chunks most similar to the query vector,
// in decreasing similarity order.
func rankChunks(chunks []model.DocumentChunk, vector []float32, k int) []model.DocumentChunk {
	type scored struct {
		chunk model.DocumentChunk
		sim   float64
	}

	ranked := make([]scored, 0, len(chunks))
	for _, c := range chunks {
		ranked = append(ranked, scored{chunk: c, sim: cosineSimilarity(c.Embedding, vector)})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].sim > ranked[j].sim })

	if k > len(ranked) {
		k = len(ranked)
	}
	out := make([]model.DocumentChunk, 0, k)
	for _, s := range ranked[:k] {
		out = append(out, s.chunk)
	}
	return out
}

// cosineSimilarity computes the cosine of the angle between a and b.
// Mismatched or zero-length vectors score 0.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
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
