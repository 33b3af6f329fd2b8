package ingestionctrl

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// RunStatus defines the status of an ingestion run
type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// ErrRunNotFound is returned when no run exists for the requested ID
var ErrRunNotFound = errors.New("ingestion run not found")

// Run represents one ingestion pipeline execution, pollable by the
// admin UI
type Run struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	Filename  string    `json:"filename"`
	Status    RunStatus `json:"status"`
	Error     *string   `json:"error,omitempty"`
	Documents int       `json:"documents"`
	Chunks    int       `json:"chunks"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Run) TableName() string {
	return "ingestion_runs"
}

// Repository defines the interface for ingestion run persistence
type Repository interface {
	Create(ctx context.Context, run *Run) error
	Get(ctx context.Context, id string) (*Run, error)
	UpdateStatus(ctx context.Context, id string, status RunStatus, runErr *string) error
	UpdateCounts(ctx context.Context, id string, documents, chunks int) error
}

type postgresRepository struct {
	db *gorm.DB
}

// NewPostgresRepository creates a Repository backed by PostgreSQL and
// migrates the ingestion_runs table
func NewPostgresRepository(db *gorm.DB) (Repository, error) {
	if err := db.AutoMigrate(&Run{}); err != nil {
		return nil, err
	}

	return &postgresRepository{db: db}, nil
}

func (r *postgresRepository) Create(ctx context.Context, run *Run) error {
	return r.db.WithContext(ctx).Create(run).Error
}

func (r *postgresRepository) Get(ctx context.Context, id string) (*Run, error) {
	var run Run
	result := r.db.WithContext(ctx).First(&run, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRunNotFound
		}
		return nil, result.Error
	}

	return &run, nil
}

func (r *postgresRepository) UpdateStatus(ctx context.Context, id string, status RunStatus, runErr *string) error {
	result := r.db.WithContext(ctx).Model(&Run{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status": status,
		"error":  runErr,
	})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRunNotFound
	}

	return nil
}

func (r *postgresRepository) UpdateCounts(ctx context.Context, id string, documents, chunks int) error {
	result := r.db.WithContext(ctx).Model(&Run{}).Where("id = ?", id).Updates(map[string]interface{}{
		"documents": documents,
		"chunks":    chunks,
	})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRunNotFound
	}

	return nil
}
