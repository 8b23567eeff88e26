// Package chunker splits long text into overlapping, sentence-boundary
// aware segments for embedding.
package chunker

import "strings"

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultOverlap is the default number of overlapping characters
// between consecutive chunks.
const DefaultOverlap = 200

// Chunker splits text into overlapping chunks, preferring to cut at
// sentence boundaries.
type Chunker struct {
	chunkSize int
	overlap   int
}

// Option configures a Chunker.
type Option func(*Chunker)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(c *Chunker) {
		if size > 0 {
			c.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		if overlap >= 0 {
			c.overlap = overlap
		}
	}
}

// New creates a Chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultOverlap,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// sentenceTerminal reports whether b ends a sentence.
func sentenceTerminal(b byte) bool {
	return b == '.' || b == '!' || b == '?' || b == '\n'
}

// Split chunks text into overlapping segments. Each chunk is at most
// chunkSize characters (modulo the boundary search), whitespace-trimmed,
// and never empty. Consecutive chunks overlap by up to the configured
// overlap. Text at or under chunkSize comes back as a single chunk.
func (c *Chunker) Split(text string) []string {
	if len(text) <= c.chunkSize {
		if trimmed := strings.TrimSpace(text); trimmed != "" {
			return []string{trimmed}
		}
		return nil
	}

	var chunks []string
	start := 0

	for start < len(text) {
		end := start + c.chunkSize
		if end < len(text) {
			// Cut at the nearest sentence boundary within the overlap
			// window, searching backward from the proposed end.
			floor := start + c.chunkSize - c.overlap
			if floor < start {
				floor = start
			}
			for i := end; i > floor; i-- {
				if sentenceTerminal(text[i-1]) {
					end = i
					break
				}
			}
		} else {
			end = len(text)
		}

		if chunk := strings.TrimSpace(text[start:end]); chunk != "" {
			chunks = append(chunks, chunk)
		}

		next := end - c.overlap
		if next <= start {
			// Overlap >= chunk size would otherwise stall the loop.
			next = end
		}
		start = next
	}

	return chunks
}
