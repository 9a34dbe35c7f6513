package bootstrap

import (
	"context"
	"errors"
	"log"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"facadescan-backend/internal/detect"
	"facadescan-backend/internal/detect/remote"
	"facadescan-backend/internal/jobs"
	"facadescan-backend/internal/pipeline"
	"facadescan-backend/internal/queue"
	"facadescan-backend/internal/render/overlay"
	"facadescan-backend/internal/shared/config"
	"facadescan-backend/internal/shared/server"
	"facadescan-backend/internal/shared/storage/object"
	localstore "facadescan-backend/internal/shared/storage/object/local"
	s3store "facadescan-backend/internal/shared/storage/object/s3"
)

var errDetectorRequired = errors.New("DETECTOR_URL is required outside dev environments")

// App holds shared dependencies.
type App struct {
	Config      config.Config
	Router      *gin.Engine
	Store       object.ObjectStore
	Queue       queue.Client
	Detector    detect.Detector
	Pipeline    *pipeline.Pipeline
	JobsRepo    jobs.Repo
	JobsService *jobs.Service
	JobsHandler *jobs.Handler
}

// Build prepares shared dependencies and wires routes. The detector is
// an explicit injected dependency; tests substitute it by assigning
// App.Detector before wiring their own pipeline.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	queueClient, err := buildQueue(ctx)
	if err != nil {
		return nil, err
	}

	detector, err := buildDetector(cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:   cfg,
		Store:    store,
		Queue:    queueClient,
		Detector: detector,
	}

	app.Pipeline = &pipeline.Pipeline{
		Detector:            app.Detector,
		Renderer:            overlay.New(),
		Store:               app.Store,
		PixelToM2Ratio:      cfg.PixelToM2Ratio,
		DefaultModelSize:    cfg.DetectorModelSize,
		ConfidenceThreshold: cfg.DetectorConfidence,
		FailOnRenderError:   cfg.RenderFailureFatal,
	}

	app.JobsRepo = jobs.NewMemoryRepo()
	app.JobsService = &jobs.Service{
		Repo:     app.JobsRepo,
		Pipeline: app.Pipeline,
		JobQueue: app.Queue,
	}
	app.JobsHandler = jobs.NewHandler(app.JobsService)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:      app.Config,
		JobsHandler: app.JobsHandler,
	})

	return app, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildQueue(ctx context.Context) (queue.Client, error) {
	if strings.TrimSpace(os.Getenv("FS_SQS_QUEUE_URL")) == "" {
		return nil, nil
	}
	return queue.NewSQSClient(ctx)
}

func buildDetector(cfg config.Config) (detect.Detector, error) {
	if strings.TrimSpace(cfg.DetectorURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DETECTOR_URL empty; using placeholder detector")
			return detect.Placeholder{}, nil
		}
		return nil, errDetectorRequired
	}
	return remote.NewClient(cfg.DetectorURL, cfg.DetectorMaxInflight)
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
