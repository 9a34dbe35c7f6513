package jobs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"facadescan-backend/internal/pipeline"
	"facadescan-backend/internal/queue"
	"facadescan-backend/internal/shared/telemetry"
)

// Job statuses.
const (
	StatusQueued     = "queued"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Service contains business logic for analysis jobs.
type Service struct {
	Repo     Repo
	Pipeline *pipeline.Pipeline
	JobQueue queue.Client
}

// Create registers a new job and hands it to the queue. Without a
// configured queue the job is processed asynchronously in-process,
// which keeps local development working without SQS.
func (s *Service) Create(ctx context.Context, propertyID, fileKey, modelSize string) (Job, error) {
	if strings.TrimSpace(propertyID) == "" || strings.TrimSpace(fileKey) == "" {
		return Job{}, errors.New("propertyID and fileKey are required")
	}

	job := Job{
		ID:         uuid.NewString(),
		PropertyID: propertyID,
		FileKey:    fileKey,
		ModelSize:  modelSize,
		Status:     StatusQueued,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.Repo.Create(ctx, job); err != nil {
		return Job{}, err
	}

	if s.JobQueue != nil {
		msg := queue.Message{
			JobID:      job.ID,
			PropertyID: job.PropertyID,
			FileKey:    job.FileKey,
			ModelSize:  job.ModelSize,
			RequestID:  requestIDFromContext(ctx),
			EnqueuedAt: job.CreatedAt.Format(time.RFC3339),
			Version:    1,
		}
		if err := s.JobQueue.Send(ctx, msg); err != nil {
			s.failJob(ctx, job.ID, "", fmt.Errorf("enqueue job: %w", err), nil)
			return Job{}, err
		}
		return job, nil
	}

	go s.processAsync(backgroundWithRequestID(ctx), job.ID)
	return job, nil
}

// Register records a job created by another process (the queue
// producer) so a worker with its own repo can track it. Registering an
// already-known job is a no-op.
func (s *Service) Register(ctx context.Context, jobID, propertyID, fileKey, modelSize string) error {
	if strings.TrimSpace(jobID) == "" {
		return errors.New("jobID is required")
	}
	if _, err := s.Repo.GetByID(ctx, jobID); err == nil {
		return nil
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}
	return s.Repo.Create(ctx, Job{
		ID:         jobID,
		PropertyID: propertyID,
		FileKey:    fileKey,
		ModelSize:  modelSize,
		Status:     StatusQueued,
		CreatedAt:  time.Now().UTC(),
	})
}

// Get returns a job by ID.
func (s *Service) Get(ctx context.Context, jobID string) (Job, error) {
	if jobID == "" {
		return Job{}, errors.New("jobID is required")
	}
	return s.Repo.GetByID(ctx, jobID)
}

// List returns jobs for a property ordered newest-first.
func (s *Service) List(ctx context.Context, propertyID string, limit, offset int) ([]Job, error) {
	if propertyID == "" {
		return nil, errors.New("propertyID is required")
	}
	return s.Repo.ListByProperty(ctx, propertyID, limit, offset)
}

// ProcessJob runs the pipeline for a queued job and records the outcome.
func (s *Service) ProcessJob(ctx context.Context, jobID string) error {
	startedAt := time.Now().UTC()
	if err := s.Repo.UpdateStatus(ctx, jobID, StatusUpdate{Status: StatusProcessing, StartedAt: &startedAt}); err != nil {
		return fmt.Errorf("set processing: %w", err)
	}

	job, err := s.Repo.GetByID(ctx, jobID)
	if err != nil {
		return fmt.Errorf("job lookup: %w", err)
	}

	telemetry.Info("job.status", map[string]any{
		"request_id":        requestIDFromContext(ctx),
		"job_id":            job.ID,
		"property_id":       job.PropertyID,
		"status":            StatusProcessing,
		"status_transition": "queued->processing",
	})

	if s.Pipeline == nil {
		err := errors.New("pipeline not configured")
		s.failJob(ctx, jobID, "", err, &startedAt)
		return err
	}

	record, err := s.Pipeline.Run(ctx, job.ID, job.FileKey, job.PropertyID, job.ModelSize)
	if err != nil {
		stage := ""
		var stageErr *pipeline.StageFailure
		if errors.As(err, &stageErr) {
			stage = stageErr.Stage
		}
		s.failJob(ctx, jobID, stage, err, &startedAt)
		return err
	}

	completedAt := time.Now().UTC()
	if err := s.Repo.UpdateStatus(ctx, jobID, StatusUpdate{
		Status:      StatusCompleted,
		Record:      &record,
		CompletedAt: &completedAt,
	}); err != nil {
		return fmt.Errorf("set completed: %w", err)
	}

	telemetry.Info("job.status", map[string]any{
		"request_id":        requestIDFromContext(ctx),
		"job_id":            job.ID,
		"property_id":       job.PropertyID,
		"status":            StatusCompleted,
		"status_transition": "processing->completed",
		"energy_label":      record.Physics.EnergyLabel,
	})
	return nil
}

func (s *Service) processAsync(ctx context.Context, jobID string) {
	defer func() {
		if r := recover(); r != nil {
			s.failJob(ctx, jobID, "", fmt.Errorf("panic: %v", r), nil)
		}
	}()
	if err := s.ProcessJob(ctx, jobID); err != nil {
		telemetry.Error("job.process_failed", map[string]any{
			"request_id": requestIDFromContext(ctx),
			"job_id":     jobID,
			"error":      err.Error(),
		})
	}
}

func (s *Service) failJob(ctx context.Context, jobID, stage string, cause error, startedAt *time.Time) {
	msg := cause.Error()
	completedAt := time.Now().UTC()
	update := StatusUpdate{
		Status:       StatusFailed,
		FailedStage:  stage,
		ErrorMessage: &msg,
		StartedAt:    startedAt,
		CompletedAt:  &completedAt,
	}
	if err := s.Repo.UpdateStatus(ctx, jobID, update); err != nil {
		telemetry.Error("job.fail_update_failed", map[string]any{
			"job_id": jobID,
			"error":  err.Error(),
		})
	}
	telemetry.Error("job.failed", map[string]any{
		"request_id": requestIDFromContext(ctx),
		"job_id":     jobID,
		"stage":      stage,
		"error":      msg,
	})
}
