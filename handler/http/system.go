package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ComponentStatus represents the status of system components
type ComponentStatus string

const (
	StatusUp   ComponentStatus = "up"
	StatusDown ComponentStatus = "down"
)

// HealthDeps holds one liveness probe per external component.
type HealthDeps struct {
	Postgres func(ctx context.Context) error
	Valkey   func(ctx context.Context) error
	Weaviate func(ctx context.Context) error
	Ollama   func(ctx context.Context) error
}

// HealthStatus represents system health status
type HealthStatus struct {
	Status     string `json:"status"`
	Components struct {
		Postgres ComponentStatus `json:"postgres"`
		Valkey   ComponentStatus `json:"valkey"`
		Weaviate ComponentStatus `json:"weaviate"`
		Ollama   ComponentStatus `json:"ollama"`
	} `json:"components"`
}

// CheckHealth reports per-component liveness
func (h *Handler) CheckHealth(c *gin.Context) {
	ctx := c.Request.Context()

	status := &HealthStatus{Status: "healthy"}
	status.Components.Postgres = probe(ctx, h.health.Postgres)
	status.Components.Valkey = probe(ctx, h.health.Valkey)
	status.Components.Weaviate = probe(ctx, h.health.Weaviate)
	status.Components.Ollama = probe(ctx, h.health.Ollama)

	if status.Components.Postgres == StatusDown ||
		status.Components.Valkey == StatusDown ||
		status.Components.Weaviate == StatusDown ||
		status.Components.Ollama == StatusDown {
		status.Status = "unhealthy"
	}

	c.JSON(http.StatusOK, status)
}

func probe(ctx context.Context, check func(ctx context.Context) error) ComponentStatus {
	if check == nil {
		return StatusDown
	}
	if err := check(ctx); err != nil {
		return StatusDown
	}
	return StatusUp
}
