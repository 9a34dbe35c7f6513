package pipeline

import "fmt"

// Pipeline stage identifiers, in execution order.
const (
	StageDownloading = "downloading"
	StageDetecting   = "detecting"
	StageComputing   = "computing"
	StageRendering   = "rendering"
	StageUploading   = "uploading"
)

// StageFailure identifies which pipeline stage failed and preserves the
// underlying cause. Stages are never retried inside the orchestrator;
// retry policy belongs to the caller.
type StageFailure struct {
	Stage string
	Err   error
}

func (e *StageFailure) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("pipeline stage %s failed", e.Stage)
	}
	return fmt.Sprintf("pipeline stage %s failed: %v", e.Stage, e.Err)
}

func (e *StageFailure) Unwrap() error { return e.Err }

func stageFailure(stage string, err error) *StageFailure {
	return &StageFailure{Stage: stage, Err: err}
}
