package jobs

import (
	"context"
	"time"

	"facadescan-backend/internal/pipeline"
)

// StatusUpdate carries the mutable fields of a job status transition.
type StatusUpdate struct {
	Status       string
	Record       *pipeline.AnalysisRecord
	FailedStage  string
	ErrorMessage *string
	StartedAt    *time.Time
	CompletedAt  *time.Time
}

// Repo stores analysis jobs.
type Repo interface {
	Create(ctx context.Context, job Job) error
	GetByID(ctx context.Context, jobID string) (Job, error)
	UpdateStatus(ctx context.Context, jobID string, update StatusUpdate) error
	ListByProperty(ctx context.Context, propertyID string, limit, offset int) ([]Job, error)
}
