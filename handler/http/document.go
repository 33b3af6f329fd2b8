package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"swasthya/src/fsutil"
	"swasthya/src/log"
)

var allowedExtensions = map[string]bool{
	".pdf": true,
	".txt": true,
	".md":  true,
}

// DocumentStore writes uploaded files into the flat staging directory the
// ingestion pipeline consumes wholesale on each rebuild.
type DocumentStore struct {
	fs  fsutil.FileStore
	dir string
}

func NewDocumentStore(fs fsutil.FileStore, dir string) (*DocumentStore, error) {
	if err := fs.MakeDirectory(dir); err != nil {
		return nil, fmt.Errorf("failed to create staging directory: %w", err)
	}

	return &DocumentStore{fs: fs, dir: dir}, nil
}

func (d *DocumentStore) Save(name string, data []byte) error {
	return d.fs.WriteFile(filepath.Join(d.dir, name), data)
}

func (d *DocumentStore) List() ([]fsutil.FileInfo, error) {
	return d.fs.List(d.dir)
}

// UploadDocument accepts a source document, stages and archives it, and
// schedules an ingestion run. It acknowledges before the pipeline runs;
// completion is observable via the ingestion status endpoint.
func (h *Handler) UploadDocument(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    "INVALID_REQUEST",
			Message: "No file uploaded",
		})
		return
	}
	defer file.Close()

	filename := filepath.Base(header.Filename)
	if !allowedExtensions[strings.ToLower(filepath.Ext(filename))] {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    "INVALID_REQUEST",
			Message: "Only PDF, TXT and Markdown files are allowed",
		})
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		sendError(c, fmt.Errorf("failed to read file: %w", err))
		return
	}

	if err := h.documents.Save(filename, data); err != nil {
		sendError(c, fmt.Errorf("failed to stage file: %w", err))
		return
	}

	// Archiving is best effort; losing the archive copy must not block
	// ingestion of the staged file.
	if err := h.minioService.PutObject(context.Background(), h.archiveBucket, filename, data); err != nil {
		log.Error(err, "failed to archive uploaded document", "filename", filename)
	}

	run, err := h.ingestService.Trigger(c.Request.Context(), filename)
	if err != nil {
		sendError(c, fmt.Errorf("failed to schedule ingestion: %w", err))
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"id":       run.ID,
		"filename": filename,
		"message":  "Document received. Ingestion started.",
	})
}

// ListDocuments returns the staged documents
func (h *Handler) ListDocuments(c *gin.Context) {
	files, err := h.documents.List()
	if err != nil {
		sendError(c, fmt.Errorf("failed to list documents: %w", err))
		return
	}

	documents := make([]gin.H, 0, len(files))
	for _, f := range files {
		documents = append(documents, gin.H{"filename": f.Name, "size": f.Size})
	}

	c.JSON(http.StatusOK, gin.H{"documents": documents})
}

// GetIngestion returns the recorded state of an ingestion run
func (h *Handler) GetIngestion(c *gin.Context) {
	run, err := h.ingestService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		sendError(c, err)
		return
	}

	c.JSON(http.StatusOK, run)
}
