package detect

import "context"

// Component class names the detector is trained on.
const (
	ClassWindow     = "window"
	ClassDoor       = "door"
	ClassFacade     = "facade"
	ClassRoof       = "roof"
	ClassBalcony    = "balcony"
	ClassInsulation = "insulation"
	ClassSolarPanel = "solar_panel"
	ClassUnknown    = "unknown"
)

// BoundingBox is an axis-aligned box in pixel coordinates.
type BoundingBox struct {
	XMin float64 `json:"xMin"`
	YMin float64 `json:"yMin"`
	XMax float64 `json:"xMax"`
	YMax float64 `json:"yMax"`
}

// Detection is a single detected building component.
type Detection struct {
	ComponentType string      `json:"componentType"`
	Confidence    float64     `json:"confidence"`
	AreaPixels    float64     `json:"areaPixels"`
	BoundingBox   BoundingBox `json:"boundingBox"`
	MaskPolygon   []float64   `json:"maskPolygon,omitempty"`
}

// ImageMeta describes the analyzed image.
type ImageMeta struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Format string `json:"format,omitempty"`
}

// Result is the full detector response for one image.
type Result struct {
	Detections   []Detection `json:"detections"`
	TimingMs     float64     `json:"timingMs"`
	ModelVersion string      `json:"modelVersion"`
	Device       string      `json:"device"`
	ImageMeta    ImageMeta   `json:"imageMetadata"`
}

// Options carries per-call overrides for the detector.
type Options struct {
	ModelSize           string
	ConfidenceThreshold float64
}

// Detector runs component detection on raw image bytes. Implementations
// must return confidence values in [0,1] and geometry in pixel units,
// and are responsible for serializing access to any shared accelerator.
type Detector interface {
	Detect(ctx context.Context, image []byte, opts Options) (Result, error)
}
