// Package index manages the searchable vector index over document chunks.
// Each rebuild loads into a fresh versioned Weaviate class and then swaps a
// live-class pointer, so queries keep hitting the previous index until the
// new one is fully loaded.
package index

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrIndexUnavailable is returned when no index has been built yet or
	// the live class is missing.
	ErrIndexUnavailable = errors.New("vector index unavailable")

	// ErrModelMismatch is returned when the index was built with a
	// different embedding model than the one configured for queries.
	ErrModelMismatch = errors.New("index embedding model does not match configured model")
)

// Entry is one indexed chunk: its embedding, text payload and provenance.
type Entry struct {
	Vector   []float32
	Text     string
	Source   string
	Position int
}

// Pointer identifies the live index version and the embedding model it was
// built with.
type Pointer struct {
	Class          string
	EmbeddingModel string
	Entries        int
	BuiltAt        time.Time
}

// PointerStore persists the live-class pointer so every process sees the
// same index version. Get returns ErrIndexUnavailable when no pointer has
// been written yet.
type PointerStore interface {
	Get(ctx context.Context) (*Pointer, error)
	Set(ctx context.Context, ptr Pointer) error
}

// Index is the queryable nearest-neighbor store over chunk embeddings.
type Index interface {
	Rebuild(ctx context.Context, entries []Entry) error
	Search(ctx context.Context, vector []float32, k int) ([]Entry, error)
}
