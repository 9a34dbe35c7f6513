package jobs

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo stores jobs in memory and is safe for concurrent use.
// Job state is transient operational bookkeeping; completed analysis
// records are persisted through the object store, not here.
type MemoryRepo struct {
	mu         sync.RWMutex
	byID       map[string]Job
	byProperty map[string][]string
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		byID:       make(map[string]Job),
		byProperty: make(map[string][]string),
	}
}

// Create stores the job.
func (r *MemoryRepo) Create(ctx context.Context, job Job) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[job.ID] = job
	r.byProperty[job.PropertyID] = append(r.byProperty[job.PropertyID], job.ID)
	return nil
}

// GetByID returns a job by its ID.
func (r *MemoryRepo) GetByID(ctx context.Context, jobID string) (Job, error) {
	if err := ctx.Err(); err != nil {
		return Job{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.byID[jobID]
	if !ok {
		return Job{}, ErrNotFound
	}
	return job, nil
}

// UpdateStatus applies a status transition to an existing job.
func (r *MemoryRepo) UpdateStatus(ctx context.Context, jobID string, update StatusUpdate) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.byID[jobID]
	if !ok {
		return ErrNotFound
	}
	job.Status = update.Status
	if update.Record != nil {
		job.Record = update.Record
	}
	if update.FailedStage != "" {
		job.FailedStage = update.FailedStage
	}
	if update.ErrorMessage != nil {
		job.ErrorMessage = update.ErrorMessage
	}
	if update.StartedAt != nil {
		job.StartedAt = update.StartedAt
	} else if update.Status == StatusProcessing && job.StartedAt == nil {
		now := time.Now().UTC()
		job.StartedAt = &now
	}
	if update.CompletedAt != nil {
		job.CompletedAt = update.CompletedAt
	} else if (update.Status == StatusCompleted || update.Status == StatusFailed) && job.CompletedAt == nil {
		now := time.Now().UTC()
		job.CompletedAt = &now
	}
	job.UpdatedAt = time.Now().UTC()
	r.byID[jobID] = job
	return nil
}

// ListByProperty returns jobs for a property, newest first, with limit/offset.
func (r *MemoryRepo) ListByProperty(ctx context.Context, propertyID string, limit, offset int) ([]Job, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}
	if limit < 0 {
		limit = 0
	}

	r.mu.RLock()
	ids := r.byProperty[propertyID]
	jobs := make([]Job, 0, len(ids))
	for _, id := range ids {
		if job, ok := r.byID[id]; ok {
			jobs = append(jobs, job)
		}
	}
	r.mu.RUnlock()

	if len(jobs) == 0 || offset >= len(jobs) {
		return []Job{}, nil
	}

	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
	})

	end := len(jobs)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return jobs[offset:end], nil
}

var _ Repo = (*MemoryRepo)(nil)
