package model

// DocumentChunk is one embedded segment of an ingested document. Chunks
// are owned by the knowledge store that created them and live until that
// store is cleared or the document is replaced.
type DocumentChunk struct {
	ID           string    `json:"id"`
	DocumentName string    `json:"document_name"`
	Index        int       `json:"chunk_index"`
	Text         string    `json:"text"`
	Embedding    []float32 `json:"-"`
}
