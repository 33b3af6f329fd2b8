package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"swasthya/src/answer"
	"swasthya/src/ingest"
	"swasthya/src/storage/minioctrl"
	"swasthya/src/storage/postgres/ingestionctrl"
	"swasthya/src/transliterate"
)

// Handler serves the question channels and the admin document endpoints.
type Handler struct {
	synthesizer   *answer.Synthesizer
	normalizer    *transliterate.Transliterator
	ingestService *ingest.Service
	documents     *DocumentStore
	minioService  *minioctrl.MinioService
	archiveBucket string
	health        HealthDeps
}

func NewHandler(
	synthesizer *answer.Synthesizer,
	normalizer *transliterate.Transliterator,
	ingestService *ingest.Service,
	documents *DocumentStore,
	minioService *minioctrl.MinioService,
	archiveBucket string,
	health HealthDeps,
) *Handler {
	return &Handler{
		synthesizer:   synthesizer,
		normalizer:    normalizer,
		ingestService: ingestService,
		documents:     documents,
		minioService:  minioService,
		archiveBucket: archiveBucket,
		health:        health,
	}
}

// RegisterRoutes registers all API routes
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api")

	// Question channels
	api.POST("/chat", h.Chat)
	api.POST("/sms", h.SMS)

	// Admin document routes
	api.POST("/documents", h.UploadDocument)
	api.GET("/documents", h.ListDocuments)
	api.GET("/ingestions/:id", h.GetIngestion)

	// System routes
	api.GET("/health", h.CheckHealth)
}

// ErrorResponse is the common error response structure
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func sendError(c *gin.Context, err error) {
	code := "INTERNAL_ERROR"
	status := http.StatusInternalServerError

	if errors.Is(err, ingestionctrl.ErrRunNotFound) {
		code = "NOT_FOUND"
		status = http.StatusNotFound
	}

	c.JSON(status, ErrorResponse{
		Code:    code,
		Message: err.Error(),
	})
}
