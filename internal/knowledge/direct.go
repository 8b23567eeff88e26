package knowledge

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// DefaultMaxContextLength is the largest document returned verbatim.
const DefaultMaxContextLength = 30000

// DefaultMaxSummaryLength bounds generated summaries in characters.
const DefaultMaxSummaryLength = 8000

// summaryMaxTokens caps the generation call used for summarization.
const summaryMaxTokens = 500

// DirectStore holds one document and serves it verbatim when it fits
// the context window, or as a memoized model-generated summary when it
// does not. No vector index is involved.
type DirectStore struct {
	gen           Generator
	maxContextLen int
	maxSummaryLen int

	mu      sync.Mutex
	sf      singleflight.Group
	text    string
	name    string
	summary string
	cached  bool
}

// DirectOption configures a DirectStore.
type DirectOption func(*DirectStore)

// WithMaxContextLength sets the verbatim-context ceiling in characters.
func WithMaxContextLength(n int) DirectOption {
	return func(s *DirectStore) {
		if n > 0 {
			s.maxContextLen = n
		}
	}
}

// WithMaxSummaryLength sets the summary ceiling in characters.
func WithMaxSummaryLength(n int) DirectOption {
	return func(s *DirectStore) {
		if n > 0 {
			s.maxSummaryLen = n
		}
	}
}

// NewDirectStore creates a DirectStore backed by gen for summarization.
func NewDirectStore(gen Generator, opts ...DirectOption) *DirectStore {
	s := &DirectStore{
		gen:           gen,
		maxContextLen: DefaultMaxContextLength,
		maxSummaryLen: DefaultMaxSummaryLength,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetDocument replaces any existing document and invalidates the cached
// summary.
func (s *DirectStore) SetDocument(_ context.Context, text, name string) (*IngestInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.text = text
	s.name = name
	s.summary = ""
	s.cached = false

	return &IngestInfo{
		DocumentName:   name,
		DocumentLength: len(text),
		ChunksCreated:  1,
		WillSummarize:  len(text) > s.maxContextLen,
	}, nil
}

// GetContext returns the full document when it fits the context limit
// (the query is ignored in this mode), otherwise a summary generated
// once per document and cached. Summary failures degrade to a truncated
// prefix of the raw text.
func (s *DirectStore) GetContext(ctx context.Context, _ string) string {
	s.mu.Lock()
	text := s.text
	name := s.name
	if text == "" {
		s.mu.Unlock()
		return ""
	}
	if len(text) <= s.maxContextLen {
		s.mu.Unlock()
		return text
	}
	if s.cached {
		summary := s.summary
		s.mu.Unlock()
		return summary
	}
	s.mu.Unlock()

	// Collapse concurrent first accesses into one generation call.
	v, _, _ := s.sf.Do(name, func() (any, error) {
		return s.generateSummary(ctx, name, text), nil
	})
	summary := v.(string)

	s.mu.Lock()
	if s.name == name && !s.cached {
		s.summary = summary
		s.cached = true
	}
	s.mu.Unlock()

	return summary
}

// generateSummary asks the model for a bounded summary of the document
// head. It never fails: generation errors fall back to a truncated
// prefix with a marker.
func (s *DirectStore) generateSummary(ctx context.Context, name, text string) string {
	input := text
	if max := s.maxSummaryLen * 3; len(input) > max {
		input = input[:max]
	}

	prompt := fmt.Sprintf(`Please provide a comprehensive but concise summary of the following document.
Focus on key legal points, important clauses, obligations, rights, and any compliance-related information.
Keep the summary under %d characters while retaining all critical information.

Document:
%s

Summary:`, s.maxSummaryLen, input)

	summary, err := s.gen.Generate(ctx, prompt, summaryMaxTokens)
	if err != nil {
		zap.L().Warn("knowledge: summary generation failed, using truncated document",
			zap.String("document", name),
			zap.Error(err),
		)
		fallback := text
		if len(fallback) > s.maxContextLen {
			fallback = fallback[:s.maxContextLen]
		}
		return fallback + "\n\n[Document truncated due to length...]"
	}

	return summary
}

// HasDocuments reports whether a document is loaded.
func (s *DirectStore) HasDocuments() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.text != ""
}

// Clear evicts the document and its cached summary.
func (s *DirectStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.text = ""
	s.name = ""
	s.summary = ""
	s.cached = false
}

// Info describes the active document.
func (s *DirectStore) Info() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.text == "" {
		return map[string]any{"has_document": false}
	}
	return map[string]any{
		"has_document":    true,
		"document_name":   s.name,
		"document_length": len(s.text),
		"uses_summary":    len(s.text) > s.maxContextLen,
		"summary_cached":  s.cached,
	}
}
