package ingest

import (
	"fmt"
)

// SourceDocument is a staged file reduced to plain text. It exists only for
// the duration of one ingestion run.
type SourceDocument struct {
	Name string
	Text string
}

// Chunk is the unit of embedding and retrieval: a bounded segment of a
// source document with provenance back to the owning file.
type Chunk struct {
	Source   string
	Position int
	Text     string
}

// Chunker splits extracted text into fixed-size segments with a fixed
// character overlap between consecutive segments.
type Chunker struct {
	size    int
	overlap int
}

// NewChunker validates the segment geometry. The overlap must be strictly
// smaller than the size or consecutive chunks would never advance.
func NewChunker(size, overlap int) (*Chunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("chunk overlap must be in [0, %d), got %d", size, overlap)
	}

	return &Chunker{size: size, overlap: overlap}, nil
}

// Split cuts the document into chunks. Size and overlap count characters,
// not bytes, so multibyte text never breaks mid-rune. Dropping the first
// overlap characters of every chunk after the first reconstructs the source
// text exactly.
func (c *Chunker) Split(doc SourceDocument) []Chunk {
	if doc.Text == "" {
		return nil
	}

	runes := []rune(doc.Text)
	step := c.size - c.overlap
	var chunks []Chunk

	for start := 0; start < len(runes); start += step {
		end := start + c.size
		if end > len(runes) {
			end = len(runes)
		}

		chunks = append(chunks, Chunk{
			Source:   doc.Name,
			Position: len(chunks),
			Text:     string(runes[start:end]),
		})

		if end == len(runes) {
			break
		}
	}

	return chunks
}
