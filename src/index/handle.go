package index

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/weaviate/weaviate/entities/models"

	"swasthya/src/log"
	"swasthya/src/storage/weaviate"
)

const classPrefix = "SwasthyaSetu_v"

var entryProperties = []*models.Property{
	{
		Name:        "content",
		DataType:    []string{"text"},
		Description: "The text of the chunk",
	},
	{
		Name:        "source",
		DataType:    []string{"text"},
		Description: "Filename of the source document",
	},
	{
		Name:        "position",
		DataType:    []string{"int"},
		Description: "Order of the chunk within the source document",
	},
}

// classStore is the slice of the Weaviate SDK the index needs.
type classStore interface {
	CreateClass(ctx context.Context, className string, properties []*models.Property) error
	DeleteClass(ctx context.Context, className string) error
	BatchAddVectors(ctx context.Context, className string, objects []weaviate.VectorObject) error
	QueryVectors(ctx context.Context, className string, vector []float32, fieldNames []string, limit int) ([]weaviate.QueryResult, error)
}

// Handle is the live vector index. Rebuild loads a fresh versioned class
// and swaps the pointer; Search always resolves the pointer first.
type Handle struct {
	sdk            classStore
	pointers       PointerStore
	embeddingModel string
}

func NewHandle(sdk classStore, pointers PointerStore, embeddingModel string) *Handle {
	return &Handle{
		sdk:            sdk,
		pointers:       pointers,
		embeddingModel: embeddingModel,
	}
}

// Rebuild replaces the index content with entries. The previous index
// version stays queryable until the pointer swap; it is deleted afterwards.
func (h *Handle) Rebuild(ctx context.Context, entries []Entry) error {
	previous, err := h.pointers.Get(ctx)
	if err != nil && !errors.Is(err, ErrIndexUnavailable) {
		return fmt.Errorf("failed to resolve current index version: %w", err)
	}

	builtAt := time.Now().UTC()
	className := fmt.Sprintf("%s%d", classPrefix, builtAt.UnixNano())

	if err := h.sdk.CreateClass(ctx, className, entryProperties); err != nil {
		return fmt.Errorf("failed to create index class: %w", err)
	}

	objects := make([]weaviate.VectorObject, len(entries))
	for i, entry := range entries {
		objects[i] = weaviate.VectorObject{
			Vector: entry.Vector,
			Properties: map[string]interface{}{
				"content":  entry.Text,
				"source":   entry.Source,
				"position": entry.Position,
			},
		}
	}

	if err := h.sdk.BatchAddVectors(ctx, className, objects); err != nil {
		// The half-built class must not leak; the live pointer still
		// names the previous version.
		if delErr := h.sdk.DeleteClass(ctx, className); delErr != nil {
			log.Error(delErr, "failed to clean up partially built index class", "class", className)
		}
		return fmt.Errorf("failed to load index entries: %w", err)
	}

	pointer := Pointer{
		Class:          className,
		EmbeddingModel: h.embeddingModel,
		Entries:        len(entries),
		BuiltAt:        builtAt,
	}
	if err := h.pointers.Set(ctx, pointer); err != nil {
		return fmt.Errorf("failed to swap index pointer: %w", err)
	}

	log.Info("index rebuilt", "class", className, "entries", len(entries))

	if previous != nil {
		if err := h.sdk.DeleteClass(ctx, previous.Class); err != nil {
			log.Error(err, "failed to delete superseded index class", "class", previous.Class)
		}
	}

	return nil
}

// Search returns up to k nearest neighbors from the live index version,
// ordered by ascending distance.
func (h *Handle) Search(ctx context.Context, vector []float32, k int) ([]Entry, error) {
	pointer, err := h.pointers.Get(ctx)
	if err != nil {
		return nil, err
	}
	if pointer.EmbeddingModel != h.embeddingModel {
		return nil, fmt.Errorf("%w: index built with %q, configured %q",
			ErrModelMismatch, pointer.EmbeddingModel, h.embeddingModel)
	}

	results, err := h.sdk.QueryVectors(ctx, pointer.Class, vector, []string{"content", "source", "position"}, k)
	if err != nil {
		return nil, fmt.Errorf("failed to search index class %s: %w", pointer.Class, err)
	}

	entries := make([]Entry, 0, len(results))
	for _, result := range results {
		entry := Entry{}
		if content, ok := result.Properties["content"].(string); ok {
			entry.Text = content
		}
		if source, ok := result.Properties["source"].(string); ok {
			entry.Source = source
		}
		if position, ok := result.Properties["position"].(float64); ok {
			entry.Position = int(position)
		}
		entries = append(entries, entry)
	}

	return entries, nil
}
