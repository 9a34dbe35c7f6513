package jobs

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"facadescan-backend/internal/shared/server/middleware"
	"facadescan-backend/internal/shared/server/respond"
)

// maxUploadBytes caps ad-hoc image uploads.
const maxUploadBytes = 20 << 20

// Handler wires HTTP handlers to the jobs service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches analysis routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/analyses", h.startAnalysis)
	rg.GET("/analyses", h.listAnalyses)
	rg.GET("/analyses/:id", h.getAnalysis)
	rg.POST("/analyses/upload", h.analyzeUpload)
}

type startAnalysisRequest struct {
	PropertyID string `json:"propertyId"`
	FileKey    string `json:"fileKey"`
	ModelSize  string `json:"modelSize"`
}

func (h *Handler) startAnalysis(c *gin.Context) {
	var req startAnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if req.PropertyID == "" || req.FileKey == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "propertyId and fileKey are required", nil)
		return
	}

	ctx := WithRequestID(c.Request.Context(), middleware.RequestIDFromContext(c))
	job, err := h.Svc.Create(ctx, req.PropertyID, req.FileKey, req.ModelSize)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to start analysis", nil)
		return
	}

	c.Set("jobId", job.ID)
	c.Set("propertyId", job.PropertyID)
	respond.JSON(c, http.StatusAccepted, gin.H{
		"jobId":  job.ID,
		"status": job.Status,
	})
}

func (h *Handler) getAnalysis(c *gin.Context) {
	jobID := c.Param("id")
	if jobID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "job id is required", nil)
		return
	}

	job, err := h.Svc.Get(c.Request.Context(), jobID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "analysis job not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch analysis job", nil)
		}
		return
	}

	resp := gin.H{
		"id":         job.ID,
		"propertyId": job.PropertyID,
		"status":     job.Status,
	}
	if job.Status == StatusCompleted && job.Record != nil {
		resp["record"] = job.Record
	}
	if job.Status == StatusFailed {
		resp["failedStage"] = job.FailedStage
		if job.ErrorMessage != nil {
			resp["error"] = *job.ErrorMessage
		}
	}

	respond.JSON(c, http.StatusOK, resp)
}

func (h *Handler) listAnalyses(c *gin.Context) {
	propertyID := c.Query("propertyId")
	if propertyID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "propertyId is required", nil)
		return
	}

	limit := 20
	offset := 0
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if limit < 0 {
		limit = 0
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}
	if offset < 0 {
		offset = 0
	}

	list, err := h.Svc.List(c.Request.Context(), propertyID, limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list analysis jobs", nil)
		return
	}
	respond.OK(c, gin.H{"jobs": list})
}

// analyzeUpload runs detection and physics on an uploaded image with no
// persistence and no rendering.
func (h *Handler) analyzeUpload(c *gin.Context) {
	if h.Svc == nil || h.Svc.Pipeline == nil {
		respond.Error(c, http.StatusServiceUnavailable, "not_configured", "analysis pipeline not configured", nil)
		return
	}

	file, _, err := c.Request.FormFile("image")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "image file is required", nil)
		return
	}
	defer file.Close()

	imageBytes, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "failed to read image", nil)
		return
	}
	if len(imageBytes) > maxUploadBytes {
		respond.Error(c, http.StatusRequestEntityTooLarge, "too_large", "image exceeds upload limit", nil)
		return
	}

	result, err := h.Svc.Pipeline.AnalyzeOnly(c.Request.Context(), imageBytes)
	if err != nil {
		respond.Error(c, http.StatusUnprocessableEntity, "analysis_failed", err.Error(), nil)
		return
	}
	respond.OK(c, result)
}
