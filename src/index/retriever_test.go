package index_test

import (
	"context"
	"errors"
	"testing"

	"swasthya/src/index"
)

type stubIndex struct {
	entries []index.Entry
	err     error
}

func (s *stubIndex) Rebuild(ctx context.Context, entries []index.Entry) error {
	s.entries = entries
	return nil
}

func (s *stubIndex) Search(ctx context.Context, vector []float32, k int) ([]index.Entry, error) {
	if s.err != nil {
		return nil, s.err
	}
	if len(s.entries) > k {
		return s.entries[:k], nil
	}
	return s.entries, nil
}

func makeEntries(n int) []index.Entry {
	entries := make([]index.Entry, n)
	for i := range entries {
		entries[i] = index.Entry{Text: "chunk", Source: "doc.txt", Position: i}
	}
	return entries
}

func TestRetrieveNeverExceedsK(t *testing.T) {
	retriever := index.NewRetriever(&stubIndex{entries: makeEntries(10)}, 4)

	entries, err := retriever.Retrieve(context.Background(), []float32{1})
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if len(entries) != 4 {
		t.Errorf("Retrieve() returned %d entries, want 4", len(entries))
	}
}

func TestRetrieveReturnsAllWhenIndexSmallerThanK(t *testing.T) {
	retriever := index.NewRetriever(&stubIndex{entries: makeEntries(2)}, 4)

	entries, err := retriever.Retrieve(context.Background(), []float32{1})
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("Retrieve() returned %d entries, want 2", len(entries))
	}
}

func TestRetrievePropagatesIndexUnavailable(t *testing.T) {
	retriever := index.NewRetriever(&stubIndex{err: index.ErrIndexUnavailable}, 4)

	_, err := retriever.Retrieve(context.Background(), []float32{1})
	if !errors.Is(err, index.ErrIndexUnavailable) {
		t.Errorf("Retrieve() error = %v, want ErrIndexUnavailable", err)
	}
}
