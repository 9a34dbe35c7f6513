package pipeline

import (
	"facadescan-backend/internal/detect"
	"facadescan-backend/internal/thermal"
)

// Job statuses.
const (
	StatusCompleted = "completed"
)

// InferenceSummary captures the detector output carried on the record.
type InferenceSummary struct {
	Detections   []detect.Detection `json:"detections"`
	TimingMs     float64            `json:"timingMs"`
	ModelVersion string             `json:"modelVersion"`
	Device       string             `json:"device"`
}

// Artifacts names the object store keys produced by a run.
type Artifacts struct {
	HeatmapKey     string `json:"heatmapKey,omitempty"`
	ResultKey      string `json:"resultKey,omitempty"`
	SourceImageKey string `json:"sourceImageKey"`
}

// StageTimings records per-stage wall-clock durations in milliseconds.
type StageTimings struct {
	DownloadMs float64 `json:"downloadMs"`
	DetectMs   float64 `json:"detectMs"`
	ComputeMs  float64 `json:"computeMs"`
	RenderMs   float64 `json:"renderMs"`
	UploadMs   float64 `json:"uploadMs"`
}

// AnalysisRecord is the full persisted outcome of one pipeline run.
type AnalysisRecord struct {
	JobID          string                  `json:"jobId"`
	PropertyID     string                  `json:"propertyId"`
	Status         string                  `json:"status"`
	Inference      InferenceSummary        `json:"inference"`
	Physics        thermal.AggregateResult `json:"physics"`
	Artifacts      Artifacts               `json:"artifacts"`
	ImageMeta      detect.ImageMeta        `json:"imageMetadata"`
	StageTimings   StageTimings            `json:"stageTimingsMs"`
	PipelineTimeMs float64                 `json:"pipelineTimeMs"`
	RenderError    string                  `json:"renderError,omitempty"`
}

// AnalysisResult is the no-persistence outcome of the analyze-only flow.
type AnalysisResult struct {
	Detections   []detect.Detection      `json:"detections"`
	TimingMs     float64                 `json:"timingMs"`
	ModelVersion string                  `json:"modelVersion"`
	Device       string                  `json:"device"`
	Physics      thermal.AggregateResult `json:"physics"`
	ImageMeta    detect.ImageMeta        `json:"imageMetadata"`
}
