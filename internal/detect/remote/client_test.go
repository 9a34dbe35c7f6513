package remote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"facadescan-backend/internal/detect"
)

func TestDetect(t *testing.T) {
	var gotPath, gotModelSize, gotConfidence string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotModelSize = r.URL.Query().Get("modelSize")
		gotConfidence = r.URL.Query().Get("confidence")
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"detections": [
				{"componentType": "window", "confidence": 0.6, "areaPixels": 1000},
				{"componentType": "facade", "confidence": 0.95, "areaPixels": 50000}
			],
			"timingMs": 88.5,
			"modelVersion": "seg-v2",
			"device": "cuda:0",
			"imageMetadata": {"width": 640, "height": 480, "format": "jpeg"}
		}`))
	}))
	defer server.Close()

	client, err := NewClient(server.URL, 2)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	result, err := client.Detect(context.Background(), []byte("imagebytes"), detect.Options{
		ModelSize:           "l",
		ConfidenceThreshold: 0.3,
	})
	if err != nil {
		t.Fatalf("detect: %v", err)
	}

	if gotPath != "/v1/detect" {
		t.Fatalf("expected /v1/detect, got %s", gotPath)
	}
	if gotModelSize != "l" || gotConfidence != "0.3" {
		t.Fatalf("expected query overrides, got modelSize=%q confidence=%q", gotModelSize, gotConfidence)
	}
	if len(result.Detections) != 2 {
		t.Fatalf("expected 2 detections, got %d", len(result.Detections))
	}
	if result.Detections[0].ComponentType != detect.ClassFacade {
		t.Fatalf("expected highest-confidence detection first, got %s", result.Detections[0].ComponentType)
	}
	if result.TimingMs != 88.5 || result.ModelVersion != "seg-v2" || result.Device != "cuda:0" {
		t.Fatalf("unexpected inference metadata %+v", result)
	}
	if result.ImageMeta.Width != 640 || result.ImageMeta.Height != 480 {
		t.Fatalf("unexpected image metadata %+v", result.ImageMeta)
	}
}

func TestDetectServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error": {"message": "model not loaded", "type": "model_unavailable"}}`))
	}))
	defer server.Close()

	client, err := NewClient(server.URL, 1)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	_, err = client.Detect(context.Background(), []byte("imagebytes"), detect.Options{})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "model_unavailable") || !strings.Contains(err.Error(), "model not loaded") {
		t.Fatalf("expected error details surfaced, got %v", err)
	}
}

func TestDetectEmptyImage(t *testing.T) {
	client, err := NewClient("http://localhost:9", 1)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := client.Detect(context.Background(), nil, detect.Options{}); err == nil {
		t.Fatalf("expected error for empty payload")
	}
}

func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient("  ", 1); err == nil {
		t.Fatalf("expected error for empty base URL")
	}

	client, err := NewClient("http://localhost:8000/", 0)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if client.baseURL != "http://localhost:8000" {
		t.Fatalf("expected trailing slash trimmed, got %q", client.baseURL)
	}
}
