// Package knowledge manages the regulatory document context handed to
// the generation model. Two interchangeable strategies are provided:
// Direct keeps one document verbatim (or as a memoized summary) and
// Retrieval embeds chunks into a vector index and retrieves the nearest
// ones per query. Both support a single active knowledge base.
package knowledge

import (
	"context"

	"github.com/rotisserie/eris"
)

// Generator produces text from a prompt via an external model service.
type Generator interface {
	Generate(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// Embedder computes embedding vectors for documents and queries. Output
// order corresponds to input order.
type Embedder interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// IngestInfo reports the outcome of loading a document into a store.
type IngestInfo struct {
	DocumentName   string `json:"document_name"`
	DocumentLength int    `json:"document_length"`
	ChunksCreated  int    `json:"chunks_created"`
	WillSummarize  bool   `json:"will_use_summary,omitempty"`
}

// Store is a context-store strategy. Loading a document evicts any
// previous one; only one knowledge base is active at a time.
type Store interface {
	// SetDocument replaces the active document with text.
	SetDocument(ctx context.Context, text, name string) (*IngestInfo, error)

	// GetContext returns grounding text for the query. Failures degrade
	// to cached, truncated, or empty output rather than an error.
	GetContext(ctx context.Context, query string) string

	// HasDocuments reports whether a knowledge base is loaded.
	HasDocuments() bool

	// Clear evicts the active document.
	Clear()
}

// ErrNoChunks is returned when a document yields no chunks after
// trimming (for example, whitespace-only input).
var ErrNoChunks = eris.New("knowledge: no chunks created from document")
