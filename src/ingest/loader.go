package ingest

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"swasthya/src/fsutil"
	"swasthya/src/log"
)

// Loader reads source documents from a flat staging directory. Every call
// re-reads from disk; nothing is cached between ingestion runs.
type Loader struct {
	fs  fsutil.FileStore
	dir string
}

func NewLoader(fs fsutil.FileStore, dir string) *Loader {
	return &Loader{
		fs:  fs,
		dir: dir,
	}
}

// Load enumerates the staging directory and extracts plain text from every
// eligible file. A file that cannot be read or yields no text is skipped and
// logged; only the directory listing itself is fatal.
func (l *Loader) Load(ctx context.Context) ([]SourceDocument, error) {
	files, err := l.fs.List(l.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list staging directory %s: %w", l.dir, err)
	}

	var docs []SourceDocument
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		text, err := l.extract(file.Name)
		if err != nil {
			log.Error(err, "skipping unreadable document", "file", file.Name)
			continue
		}
		if strings.TrimSpace(text) == "" {
			log.Info("skipping document with no extractable text", "file", file.Name)
			continue
		}

		docs = append(docs, SourceDocument{Name: file.Name, Text: text})
	}

	log.Info("loaded staged documents", "eligible", len(docs), "total", len(files))

	return docs, nil
}

func (l *Loader) extract(name string) (string, error) {
	path := filepath.Join(l.dir, name)

	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt", ".md":
		data, err := l.fs.ReadFile(path)
		if err != nil {
			return "", err
		}
		return string(data), nil
	case ".pdf":
		return extractPDF(path)
	default:
		return "", fmt.Errorf("unsupported file type: %s", name)
	}
}

func extractPDF(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}
	defer f.Close()

	reader, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to extract pdf text: %w", err)
	}

	text, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("failed to read pdf text: %w", err)
	}

	return string(text), nil
}
