package ingest

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"swasthya/src/index"
	"swasthya/src/log"
	"swasthya/src/storage/postgres/ingestionctrl"
)

// ErrNothingToIngest is returned when the staging area yields zero usable
// chunks; no index write happens in that case.
var ErrNothingToIngest = errors.New("no usable documents to ingest")

// Embedder maps text to a fixed-dimension vector. The same embedder must
// serve both ingestion and querying.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Stats summarizes one pipeline execution.
type Stats struct {
	Documents int
	Chunks    int
}

// Coordinator orchestrates Loader -> Chunker -> Embedder -> index rebuild
// as one pipeline run. Runs are serialized: at most one rebuild is in
// flight at any time.
type Coordinator struct {
	loader   *Loader
	chunker  *Chunker
	embedder Embedder
	idx      index.Index
	runs     ingestionctrl.Repository

	mu sync.Mutex

	// Progress, if set, is called after each chunk is embedded.
	Progress func(done, total int)
}

func NewCoordinator(loader *Loader, chunker *Chunker, embedder Embedder, idx index.Index, runs ingestionctrl.Repository) *Coordinator {
	return &Coordinator{
		loader:   loader,
		chunker:  chunker,
		embedder: embedder,
		idx:      idx,
		runs:     runs,
	}
}

// Execute performs one full pipeline run: re-read the staging area, chunk,
// embed every chunk, rebuild the index. The mutex guarantees single-flight
// semantics when triggers overlap.
func (c *Coordinator) Execute(ctx context.Context) (Stats, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	docs, err := c.loader.Load(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to load documents: %w", err)
	}

	var chunks []Chunk
	for _, doc := range docs {
		chunks = append(chunks, c.chunker.Split(doc)...)
	}

	if len(chunks) == 0 {
		return Stats{}, ErrNothingToIngest
	}

	entries := make([]index.Entry, len(chunks))
	for i, chunk := range chunks {
		vector, err := c.embedder.Embed(ctx, chunk.Text)
		if err != nil {
			return Stats{}, fmt.Errorf("failed to embed chunk %d of %s: %w", chunk.Position, chunk.Source, err)
		}

		entries[i] = index.Entry{
			Vector:   vector,
			Text:     chunk.Text,
			Source:   chunk.Source,
			Position: chunk.Position,
		}

		if c.Progress != nil {
			c.Progress(i+1, len(chunks))
		}
	}

	if err := c.idx.Rebuild(ctx, entries); err != nil {
		return Stats{}, fmt.Errorf("failed to rebuild index: %w", err)
	}

	return Stats{Documents: len(docs), Chunks: len(chunks)}, nil
}

// Run executes the pipeline for a recorded run and tracks its status
// transitions: pending -> running -> (completed | failed).
func (c *Coordinator) Run(ctx context.Context, runID string) error {
	if err := c.runs.UpdateStatus(ctx, runID, ingestionctrl.RunStatusRunning, nil); err != nil {
		return fmt.Errorf("failed to mark run %s running: %w", runID, err)
	}

	stats, err := c.Execute(ctx)
	if err != nil {
		errStr := err.Error()
		if updateErr := c.runs.UpdateStatus(ctx, runID, ingestionctrl.RunStatusFailed, &errStr); updateErr != nil {
			log.Error(updateErr, "failed to mark run failed", "run_id", runID)
		}
		return fmt.Errorf("ingestion run %s failed: %w", runID, err)
	}

	if err := c.runs.UpdateCounts(ctx, runID, stats.Documents, stats.Chunks); err != nil {
		log.Error(err, "failed to record run counts", "run_id", runID)
	}
	if err := c.runs.UpdateStatus(ctx, runID, ingestionctrl.RunStatusCompleted, nil); err != nil {
		return fmt.Errorf("failed to mark run %s completed: %w", runID, err)
	}

	log.Info("ingestion run completed", "run_id", runID, "documents", stats.Documents, "chunks", stats.Chunks)

	return nil
}
