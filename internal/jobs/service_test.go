package jobs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"testing"

	"facadescan-backend/internal/detect"
	"facadescan-backend/internal/pipeline"
	"facadescan-backend/internal/queue"
	"facadescan-backend/internal/render"
)

type fakeQueue struct {
	sent    []queue.Message
	sendErr error
}

func (q *fakeQueue) Send(_ context.Context, msg queue.Message) error {
	if q.sendErr != nil {
		return q.sendErr
	}
	q.sent = append(q.sent, msg)
	return nil
}

type stubStore struct {
	objects map[string][]byte
}

func (s *stubStore) Get(_ context.Context, key string) ([]byte, error) {
	data, ok := s.objects[key]
	if !ok {
		return nil, fmt.Errorf("object not found: %s", key)
	}
	return data, nil
}

func (s *stubStore) Put(_ context.Context, key string, data []byte, _ string) (string, error) {
	s.objects[key] = data
	return key, nil
}

type stubDetector struct{}

func (stubDetector) Detect(_ context.Context, _ []byte, _ detect.Options) (detect.Result, error) {
	return detect.Result{
		Detections: []detect.Detection{
			{ComponentType: detect.ClassFacade, Confidence: 0.9, AreaPixels: 500000},
		},
	}, nil
}

type stubRenderer struct{}

func (stubRenderer) Render(_ context.Context, _ image.Image, _ []render.Component) ([]byte, error) {
	return []byte("png"), nil
}

func testImagePNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))); err != nil {
		t.Fatalf("encode test image: %v", err)
	}
	return buf.Bytes()
}

func newTestService(t *testing.T, q queue.Client) (*Service, *stubStore) {
	t.Helper()
	store := &stubStore{objects: map[string][]byte{
		"prop-1/source.png": testImagePNG(t),
	}}
	return &Service{
		Repo: NewMemoryRepo(),
		Pipeline: &pipeline.Pipeline{
			Detector:       stubDetector{},
			Renderer:       stubRenderer{},
			Store:          store,
			PixelToM2Ratio: 0.001,
		},
		JobQueue: q,
	}, store
}

func TestCreateEnqueues(t *testing.T) {
	q := &fakeQueue{}
	svc, _ := newTestService(t, q)

	job, err := svc.Create(context.Background(), "prop-1", "prop-1/source.png", "m")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if job.Status != StatusQueued {
		t.Fatalf("expected queued, got %s", job.Status)
	}
	if len(q.sent) != 1 {
		t.Fatalf("expected one queued message, got %d", len(q.sent))
	}
	msg := q.sent[0]
	if msg.JobID != job.ID || msg.PropertyID != "prop-1" || msg.FileKey != "prop-1/source.png" || msg.ModelSize != "m" {
		t.Fatalf("unexpected message %+v", msg)
	}
	if msg.Version != 1 {
		t.Fatalf("expected message version 1, got %d", msg.Version)
	}

	stored, err := svc.Get(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Status != StatusQueued {
		t.Fatalf("expected stored job queued, got %s", stored.Status)
	}
}

func TestCreateValidatesInput(t *testing.T) {
	svc, _ := newTestService(t, &fakeQueue{})
	if _, err := svc.Create(context.Background(), "", "key", ""); err == nil {
		t.Fatalf("expected error for empty propertyID")
	}
	if _, err := svc.Create(context.Background(), "prop-1", "", ""); err == nil {
		t.Fatalf("expected error for empty fileKey")
	}
}

func TestCreateEnqueueFailureMarksJobFailed(t *testing.T) {
	q := &fakeQueue{sendErr: errors.New("queue unavailable")}
	svc, _ := newTestService(t, q)

	_, err := svc.Create(context.Background(), "prop-1", "prop-1/source.png", "")
	if err == nil {
		t.Fatalf("expected enqueue failure")
	}
}

func TestRegisterIsIdempotent(t *testing.T) {
	svc, _ := newTestService(t, &fakeQueue{})
	ctx := context.Background()

	if err := svc.Register(ctx, "job-1", "prop-1", "prop-1/source.png", "m"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := svc.Register(ctx, "job-1", "prop-1", "prop-1/source.png", "m"); err != nil {
		t.Fatalf("second register: %v", err)
	}

	job, err := svc.Get(ctx, "job-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if job.Status != StatusQueued {
		t.Fatalf("expected queued, got %s", job.Status)
	}
}

func TestProcessJobCompletes(t *testing.T) {
	svc, store := newTestService(t, &fakeQueue{})
	ctx := context.Background()

	if err := svc.Register(ctx, "job-1", "prop-1", "prop-1/source.png", ""); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := svc.ProcessJob(ctx, "job-1"); err != nil {
		t.Fatalf("process: %v", err)
	}

	job, err := svc.Get(ctx, "job-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if job.Status != StatusCompleted {
		t.Fatalf("expected completed, got %s", job.Status)
	}
	if job.Record == nil {
		t.Fatalf("expected analysis record attached")
	}
	if job.Record.Physics.OverallUValue != 0.408 {
		t.Fatalf("expected overall U-value 0.408, got %v", job.Record.Physics.OverallUValue)
	}
	if job.CompletedAt == nil || job.StartedAt == nil {
		t.Fatalf("expected timestamps stamped")
	}
	if _, ok := store.objects["prop-1/job-1_result.json"]; !ok {
		t.Fatalf("expected result artifact stored")
	}
}

func TestProcessJobRecordsFailedStage(t *testing.T) {
	svc, _ := newTestService(t, &fakeQueue{})
	ctx := context.Background()

	if err := svc.Register(ctx, "job-1", "prop-1", "missing.png", ""); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := svc.ProcessJob(ctx, "job-1"); err == nil {
		t.Fatalf("expected processing failure")
	}

	job, err := svc.Get(ctx, "job-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if job.Status != StatusFailed {
		t.Fatalf("expected failed, got %s", job.Status)
	}
	if job.FailedStage != pipeline.StageDownloading {
		t.Fatalf("expected downloading stage, got %s", job.FailedStage)
	}
	if job.ErrorMessage == nil || *job.ErrorMessage == "" {
		t.Fatalf("expected error message recorded")
	}
}

func TestProcessJobUnknownJob(t *testing.T) {
	svc, _ := newTestService(t, &fakeQueue{})
	if err := svc.ProcessJob(context.Background(), "nope"); err == nil {
		t.Fatalf("expected error for unknown job")
	}
}
