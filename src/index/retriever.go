package index

import (
	"context"
)

// Retriever wraps an Index with a fixed retrieval width. The width is a
// configuration constant, never caller-controlled.
type Retriever struct {
	idx Index
	k   int
}

func NewRetriever(idx Index, k int) *Retriever {
	return &Retriever{
		idx: idx,
		k:   k,
	}
}

// Retrieve returns at most k entries most similar to the query vector. If
// the index holds fewer than k entries, all of them are returned.
func (r *Retriever) Retrieve(ctx context.Context, vector []float32) ([]Entry, error) {
	entries, err := r.idx.Search(ctx, vector, r.k)
	if err != nil {
		return nil, err
	}

	if len(entries) > r.k {
		entries = entries[:r.k]
	}

	return entries, nil
}
