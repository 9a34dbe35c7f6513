// Package pipeline orchestrates one analysis job end to end: download
// the source image, detect components, compute the thermal analysis,
// render the overlay artifact, and upload the results. Stages within a
// job run strictly in sequence; independent jobs may run concurrently.
package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"math"
	"time"

	_ "image/jpeg"
	_ "image/png"

	"facadescan-backend/internal/detect"
	"facadescan-backend/internal/render"
	"facadescan-backend/internal/shared/metrics"
	"facadescan-backend/internal/shared/storage/object"
	"facadescan-backend/internal/shared/telemetry"
	"facadescan-backend/internal/thermal"
)

// Pipeline drives analysis jobs against its injected collaborators.
// All dependencies are explicit constructor state; there is no implicit
// global access to the detector or store.
type Pipeline struct {
	Detector detect.Detector
	Renderer render.Renderer
	Store    object.ObjectStore

	// PixelToM2Ratio calibrates detected pixel areas to square meters;
	// zero selects the engine default.
	PixelToM2Ratio float64

	// DefaultModelSize is used when a job carries no override.
	DefaultModelSize string

	// ConfidenceThreshold is passed to the detector; zero keeps the
	// detector's own default.
	ConfidenceThreshold float64

	// FailOnRenderError restores the strict behavior of failing the
	// whole job when the renderer fails. The default is to degrade:
	// the job completes with the physics result and no visual artifact.
	FailOnRenderError bool
}

// Run executes the full persisted flow for one job. On failure it
// returns a *StageFailure naming the stage that failed.
func (p *Pipeline) Run(ctx context.Context, jobID, fileKey, propertyID, modelSize string) (AnalysisRecord, error) {
	pipelineStart := time.Now()
	metrics.IncPipelineStarted()
	telemetry.Info("pipeline.started", map[string]any{
		"job_id":      jobID,
		"property_id": propertyID,
		"file_key":    fileKey,
	})

	var timings StageTimings

	// Downloading
	stageStart := time.Now()
	imageBytes, err := p.Store.Get(ctx, fileKey)
	if err != nil {
		metrics.IncPipelineFailed()
		return AnalysisRecord{}, stageFailure(StageDownloading, fmt.Errorf("get source image key=%s: %w", fileKey, err))
	}
	img, _, err := image.Decode(bytes.NewReader(imageBytes))
	if err != nil {
		metrics.IncPipelineFailed()
		return AnalysisRecord{}, stageFailure(StageDownloading, fmt.Errorf("decode source image key=%s: %w", fileKey, err))
	}
	timings.DownloadMs = millisSince(stageStart)

	// Detecting
	stageStart = time.Now()
	if modelSize == "" {
		modelSize = p.DefaultModelSize
	}
	detection, err := p.Detector.Detect(ctx, imageBytes, detect.Options{
		ModelSize:           modelSize,
		ConfidenceThreshold: p.ConfidenceThreshold,
	})
	if err != nil {
		metrics.IncPipelineFailed()
		return AnalysisRecord{}, stageFailure(StageDetecting, err)
	}
	timings.DetectMs = millisSince(stageStart)
	telemetry.Info("pipeline.detected", map[string]any{
		"job_id":     jobID,
		"detections": len(detection.Detections),
		"timing_ms":  detection.TimingMs,
	})

	// Computing
	stageStart = time.Now()
	physics := thermal.AnalyzeComponents(detection.Detections, p.PixelToM2Ratio)
	timings.ComputeMs = millisSince(stageStart)

	record := AnalysisRecord{
		JobID:      jobID,
		PropertyID: propertyID,
		Status:     StatusCompleted,
		Inference: InferenceSummary{
			Detections:   detection.Detections,
			TimingMs:     detection.TimingMs,
			ModelVersion: detection.ModelVersion,
			Device:       detection.Device,
		},
		Physics: physics,
		Artifacts: Artifacts{
			SourceImageKey: fileKey,
		},
		ImageMeta: detection.ImageMeta,
	}

	// Rendering
	stageStart = time.Now()
	heatmapBytes, renderErr := p.Renderer.Render(ctx, img, renderComponents(detection.Detections, physics.Components))
	timings.RenderMs = millisSince(stageStart)
	if renderErr != nil {
		if p.FailOnRenderError {
			metrics.IncPipelineFailed()
			return AnalysisRecord{}, stageFailure(StageRendering, renderErr)
		}
		// Keep the already-valid physics result; the job completes
		// without a visual artifact.
		metrics.IncPipelineDegraded()
		record.RenderError = renderErr.Error()
		telemetry.Warn("pipeline.render_degraded", map[string]any{
			"job_id": jobID,
			"error":  renderErr.Error(),
		})
	}

	// Uploading
	stageStart = time.Now()
	if renderErr == nil {
		heatmapKey := fmt.Sprintf("%s/%s_heatmap.png", propertyID, jobID)
		storedKey, err := p.Store.Put(ctx, heatmapKey, heatmapBytes, "image/png")
		if err != nil {
			metrics.IncPipelineFailed()
			return AnalysisRecord{}, stageFailure(StageUploading, fmt.Errorf("put heatmap key=%s: %w", heatmapKey, err))
		}
		record.Artifacts.HeatmapKey = storedKey
	}

	resultKey := fmt.Sprintf("%s/%s_result.json", propertyID, jobID)
	record.StageTimings = timings
	record.PipelineTimeMs = millisSince(pipelineStart)
	resultPayload, err := json.Marshal(record)
	if err != nil {
		metrics.IncPipelineFailed()
		return AnalysisRecord{}, stageFailure(StageUploading, fmt.Errorf("encode analysis record: %w", err))
	}
	storedKey, err := p.Store.Put(ctx, resultKey, resultPayload, "application/json")
	if err != nil {
		metrics.IncPipelineFailed()
		return AnalysisRecord{}, stageFailure(StageUploading, fmt.Errorf("put analysis record key=%s: %w", resultKey, err))
	}
	record.Artifacts.ResultKey = storedKey
	record.StageTimings.UploadMs = millisSince(stageStart)
	record.PipelineTimeMs = millisSince(pipelineStart)

	metrics.IncPipelineCompleted()
	metrics.ObservePipelineDurationMs(record.PipelineTimeMs)
	telemetry.Info("pipeline.completed", map[string]any{
		"job_id":           jobID,
		"property_id":      propertyID,
		"energy_label":     physics.EnergyLabel,
		"overall_u_value":  physics.OverallUValue,
		"pipeline_time_ms": record.PipelineTimeMs,
	})

	return record, nil
}

// AnalyzeOnly runs detection and physics on raw image bytes without
// storage or rendering, for ad-hoc single-image analysis.
func (p *Pipeline) AnalyzeOnly(ctx context.Context, imageBytes []byte) (AnalysisResult, error) {
	if _, _, err := image.Decode(bytes.NewReader(imageBytes)); err != nil {
		return AnalysisResult{}, stageFailure(StageDownloading, fmt.Errorf("decode image: %w", err))
	}

	detection, err := p.Detector.Detect(ctx, imageBytes, detect.Options{
		ModelSize:           p.DefaultModelSize,
		ConfidenceThreshold: p.ConfidenceThreshold,
	})
	if err != nil {
		return AnalysisResult{}, stageFailure(StageDetecting, err)
	}

	physics := thermal.AnalyzeComponents(detection.Detections, p.PixelToM2Ratio)

	return AnalysisResult{
		Detections:   detection.Detections,
		TimingMs:     detection.TimingMs,
		ModelVersion: detection.ModelVersion,
		Device:       detection.Device,
		Physics:      physics,
		ImageMeta:    detection.ImageMeta,
	}, nil
}

func renderComponents(detections []detect.Detection, components []thermal.ComponentAnalysis) []render.Component {
	out := make([]render.Component, 0, len(detections))
	for i, det := range detections {
		comp := render.Component{Detection: det}
		if i < len(components) {
			comp.UValue = components[i].UValue
			comp.Condition = components[i].Condition
		}
		out = append(out, comp)
	}
	return out
}

func millisSince(start time.Time) float64 {
	return math.Round(float64(time.Since(start).Microseconds())/1000*100) / 100
}
