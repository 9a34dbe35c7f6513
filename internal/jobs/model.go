package jobs

import (
	"time"

	"facadescan-backend/internal/pipeline"
)

// Job represents one analysis job from enqueue to completion.
type Job struct {
	ID           string                   `json:"id"`
	PropertyID   string                   `json:"propertyId"`
	FileKey      string                   `json:"fileKey"`
	ModelSize    string                   `json:"modelSize,omitempty"`
	Status       string                   `json:"status"`
	FailedStage  string                   `json:"failedStage,omitempty"`
	ErrorMessage *string                  `json:"errorMessage,omitempty"`
	Record       *pipeline.AnalysisRecord `json:"record,omitempty"`
	CreatedAt    time.Time                `json:"createdAt"`
	StartedAt    *time.Time               `json:"startedAt,omitempty"`
	CompletedAt  *time.Time               `json:"completedAt,omitempty"`
	UpdatedAt    time.Time                `json:"updatedAt"`
}
