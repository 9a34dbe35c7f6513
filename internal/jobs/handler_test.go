package jobs

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func newTestRouter(svc *Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(svc).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func TestStartAnalysis(t *testing.T) {
	q := &fakeQueue{}
	svc, _ := newTestService(t, q)
	router := newTestRouter(svc)

	body := `{"propertyId":"prop-1","fileKey":"prop-1/source.png","modelSize":"m"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyses", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", resp.Code, resp.Body.String())
	}
	var parsed struct {
		JobID  string `json:"jobId"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &parsed); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if parsed.JobID == "" || parsed.Status != StatusQueued {
		t.Fatalf("unexpected response %+v", parsed)
	}
	if len(q.sent) != 1 {
		t.Fatalf("expected one queued message, got %d", len(q.sent))
	}
}

func TestStartAnalysisValidation(t *testing.T) {
	svc, _ := newTestService(t, &fakeQueue{})
	router := newTestRouter(svc)

	for _, body := range []string{
		`{}`,
		`{"propertyId":"prop-1"}`,
		`{"fileKey":"k"}`,
		`not json`,
	} {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/analyses", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusBadRequest {
			t.Fatalf("body %q: expected 400, got %d", body, resp.Code)
		}
	}
}

func TestGetAnalysisNotFound(t *testing.T) {
	svc, _ := newTestService(t, &fakeQueue{})
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/analyses/nope", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestGetAnalysisCompleted(t *testing.T) {
	svc, _ := newTestService(t, &fakeQueue{})
	router := newTestRouter(svc)
	ctx := httptest.NewRequest(http.MethodGet, "/", nil).Context()

	if err := svc.Register(ctx, "job-1", "prop-1", "prop-1/source.png", ""); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := svc.ProcessJob(ctx, "job-1"); err != nil {
		t.Fatalf("process: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/analyses/job-1", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var parsed struct {
		Status string `json:"status"`
		Record *struct {
			Physics struct {
				EnergyLabel string `json:"energyLabel"`
			} `json:"physics"`
		} `json:"record"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &parsed); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if parsed.Status != StatusCompleted {
		t.Fatalf("expected completed, got %s", parsed.Status)
	}
	if parsed.Record == nil || parsed.Record.Physics.EnergyLabel == "" {
		t.Fatalf("expected record with physics in response")
	}
}

func TestListAnalyses(t *testing.T) {
	svc, _ := newTestService(t, &fakeQueue{})
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/analyses", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without propertyId, got %d", resp.Code)
	}

	ctx := httptest.NewRequest(http.MethodGet, "/", nil).Context()
	if err := svc.Register(ctx, "job-1", "prop-1", "prop-1/source.png", ""); err != nil {
		t.Fatalf("register: %v", err)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/analyses?propertyId=prop-1", nil)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var parsed struct {
		Jobs []Job `json:"jobs"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &parsed); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(parsed.Jobs) != 1 || parsed.Jobs[0].ID != "job-1" {
		t.Fatalf("unexpected jobs %+v", parsed.Jobs)
	}
}

func TestAnalyzeUpload(t *testing.T) {
	svc, _ := newTestService(t, &fakeQueue{})
	router := newTestRouter(svc)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("image", "facade.png")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(testImagePNG(t)); err != nil {
		t.Fatalf("write image: %v", err)
	}
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyses/upload", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var parsed struct {
		Physics struct {
			OverallUValue float64 `json:"overallUValue"`
		} `json:"physics"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &parsed); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if parsed.Physics.OverallUValue != 0.408 {
		t.Fatalf("expected overall U-value 0.408, got %v", parsed.Physics.OverallUValue)
	}
}

func TestAnalyzeUploadMissingFile(t *testing.T) {
	svc, _ := newTestService(t, &fakeQueue{})
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyses/upload", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestAnalyzeUploadRejectsBadImage(t *testing.T) {
	svc, _ := newTestService(t, &fakeQueue{})
	router := newTestRouter(svc)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("image", "notes.txt")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte("not an image")); err != nil {
		t.Fatalf("write payload: %v", err)
	}
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyses/upload", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.Code)
	}
}
