package ingest_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"swasthya/src/fsutil"
	"swasthya/src/index"
	"swasthya/src/ingest"
	"swasthya/src/storage/postgres/ingestionctrl"
)

type fakeEmbedder struct {
	calls   int32
	active  int32
	overlap int32
	delay   time.Duration
	err     error
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if atomic.AddInt32(&f.active, 1) > 1 {
		atomic.StoreInt32(&f.overlap, 1)
	}
	defer atomic.AddInt32(&f.active, -1)

	atomic.AddInt32(&f.calls, 1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.err != nil {
		return nil, f.err
	}
	return []float32{float32(len(text))}, nil
}

type fakeIndex struct {
	mu         sync.Mutex
	rebuilds   [][]index.Entry
	rebuildErr error
}

func (f *fakeIndex) Rebuild(ctx context.Context, entries []index.Entry) error {
	if f.rebuildErr != nil {
		return f.rebuildErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	stored := make([]index.Entry, len(entries))
	copy(stored, entries)
	f.rebuilds = append(f.rebuilds, stored)
	return nil
}

func (f *fakeIndex) Search(ctx context.Context, vector []float32, k int) ([]index.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.rebuilds) == 0 {
		return nil, index.ErrIndexUnavailable
	}

	entries := f.rebuilds[len(f.rebuilds)-1]
	if len(entries) > k {
		entries = entries[:k]
	}
	return entries, nil
}

type memoryRuns struct {
	mu   sync.Mutex
	runs map[string]*ingestionctrl.Run
}

func newMemoryRuns() *memoryRuns {
	return &memoryRuns{runs: make(map[string]*ingestionctrl.Run)}
}

func (m *memoryRuns) Create(ctx context.Context, run *ingestionctrl.Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *run
	m.runs[run.ID] = &stored
	return nil
}

func (m *memoryRuns) Get(ctx context.Context, id string) (*ingestionctrl.Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	run, ok := m.runs[id]
	if !ok {
		return nil, ingestionctrl.ErrRunNotFound
	}
	copied := *run
	return &copied, nil
}

func (m *memoryRuns) UpdateStatus(ctx context.Context, id string, status ingestionctrl.RunStatus, runErr *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	run, ok := m.runs[id]
	if !ok {
		return ingestionctrl.ErrRunNotFound
	}
	run.Status = status
	run.Error = runErr
	return nil
}

func (m *memoryRuns) UpdateCounts(ctx context.Context, id string, documents, chunks int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	run, ok := m.runs[id]
	if !ok {
		return ingestionctrl.ErrRunNotFound
	}
	run.Documents = documents
	run.Chunks = chunks
	return nil
}

func newTestCoordinator(t *testing.T, dir string, embedder ingest.Embedder, idx index.Index, runs ingestionctrl.Repository) *ingest.Coordinator {
	t.Helper()
	chunker, err := ingest.NewChunker(1000, 200)
	if err != nil {
		t.Fatalf("NewChunker() error = %v", err)
	}

	loader := ingest.NewLoader(fsutil.NewLocalFileStore(), dir)
	return ingest.NewCoordinator(loader, chunker, embedder, idx, runs)
}

func TestExecutePipeline(t *testing.T) {
	dir := t.TempDir()
	stage(t, dir, "handbook.txt", strings.Repeat("d", 2500))

	embedder := &fakeEmbedder{}
	idx := &fakeIndex{}
	coordinator := newTestCoordinator(t, dir, embedder, idx, nil)

	stats, err := coordinator.Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if stats.Documents != 1 || stats.Chunks != 3 {
		t.Errorf("Execute() stats = %+v, want 1 document and 3 chunks", stats)
	}
	if got := atomic.LoadInt32(&embedder.calls); got != 3 {
		t.Errorf("embedder called %d times, want 3", got)
	}
	if len(idx.rebuilds) != 1 {
		t.Fatalf("index rebuilt %d times, want 1", len(idx.rebuilds))
	}

	entries := idx.rebuilds[0]
	if len(entries) != 3 {
		t.Fatalf("rebuild received %d entries, want 3", len(entries))
	}
	for i, entry := range entries {
		if entry.Source != "handbook.txt" {
			t.Errorf("entry %d source = %q", i, entry.Source)
		}
		if entry.Position != i {
			t.Errorf("entry %d position = %d", i, entry.Position)
		}
		if len(entry.Vector) == 0 {
			t.Errorf("entry %d has no vector", i)
		}
	}
}

func TestExecuteNothingToIngest(t *testing.T) {
	dir := t.TempDir()

	idx := &fakeIndex{}
	coordinator := newTestCoordinator(t, dir, &fakeEmbedder{}, idx, nil)

	_, err := coordinator.Execute(context.Background())
	if !errors.Is(err, ingest.ErrNothingToIngest) {
		t.Fatalf("Execute() error = %v, want ErrNothingToIngest", err)
	}
	if len(idx.rebuilds) != 0 {
		t.Errorf("index was rebuilt despite empty staging area")
	}
}

func TestExecuteEmbedderFailureAbortsRebuild(t *testing.T) {
	dir := t.TempDir()
	stage(t, dir, "handbook.txt", strings.Repeat("d", 1500))

	idx := &fakeIndex{}
	embedder := &fakeEmbedder{err: errors.New("backend unreachable")}
	coordinator := newTestCoordinator(t, dir, embedder, idx, nil)

	if _, err := coordinator.Execute(context.Background()); err == nil {
		t.Fatal("Execute() succeeded despite embedder failure")
	}
	if len(idx.rebuilds) != 0 {
		t.Errorf("index was rebuilt despite embedder failure")
	}
}

func TestRunRecordsLifecycle(t *testing.T) {
	dir := t.TempDir()
	stage(t, dir, "handbook.txt", strings.Repeat("d", 2500))

	runs := newMemoryRuns()
	runs.Create(context.Background(), &ingestionctrl.Run{ID: "run-1", Status: ingestionctrl.RunStatusPending})

	coordinator := newTestCoordinator(t, dir, &fakeEmbedder{}, &fakeIndex{}, runs)
	if err := coordinator.Run(context.Background(), "run-1"); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	run, err := runs.Get(context.Background(), "run-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if run.Status != ingestionctrl.RunStatusCompleted {
		t.Errorf("run status = %s, want completed", run.Status)
	}
	if run.Documents != 1 || run.Chunks != 3 {
		t.Errorf("run counts = %d documents, %d chunks, want 1 and 3", run.Documents, run.Chunks)
	}
}

func TestRunRecordsFailure(t *testing.T) {
	dir := t.TempDir()
	stage(t, dir, "handbook.txt", "some text")

	runs := newMemoryRuns()
	runs.Create(context.Background(), &ingestionctrl.Run{ID: "run-2", Status: ingestionctrl.RunStatusPending})

	embedder := &fakeEmbedder{err: errors.New("backend unreachable")}
	coordinator := newTestCoordinator(t, dir, embedder, &fakeIndex{}, runs)

	if err := coordinator.Run(context.Background(), "run-2"); err == nil {
		t.Fatal("Run() succeeded despite pipeline failure")
	}

	run, err := runs.Get(context.Background(), "run-2")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if run.Status != ingestionctrl.RunStatusFailed {
		t.Errorf("run status = %s, want failed", run.Status)
	}
	if run.Error == nil || !strings.Contains(*run.Error, "backend unreachable") {
		t.Errorf("run error = %v, want the embedder failure", run.Error)
	}
}

func TestConcurrentRunsAreSerialized(t *testing.T) {
	dir := t.TempDir()
	stage(t, dir, "handbook.txt", strings.Repeat("d", 2500))

	embedder := &fakeEmbedder{delay: 5 * time.Millisecond}
	idx := &fakeIndex{}
	coordinator := newTestCoordinator(t, dir, embedder, idx, nil)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := coordinator.Execute(context.Background()); err != nil {
				t.Errorf("Execute() error = %v", err)
			}
		}()
	}
	wg.Wait()

	if atomic.LoadInt32(&embedder.overlap) != 0 {
		t.Error("embedding calls from two runs overlapped; rebuilds are not single-flight")
	}
	if len(idx.rebuilds) != 2 {
		t.Fatalf("index rebuilt %d times, want 2", len(idx.rebuilds))
	}
	for i, entries := range idx.rebuilds {
		if len(entries) != 3 {
			t.Errorf("rebuild %d received %d entries, want one run's complete output of 3", i, len(entries))
		}
	}
}
