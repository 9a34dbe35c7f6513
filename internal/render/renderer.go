package render

import (
	"context"
	"image"

	"facadescan-backend/internal/detect"
)

// Component pairs a detection with its thermal rating for overlay drawing.
type Component struct {
	Detection detect.Detection
	UValue    float64
	Condition string
}

// Renderer produces a visual overlay artifact for an analyzed image.
// Implementations are stateless and may fail.
type Renderer interface {
	Render(ctx context.Context, img image.Image, components []Component) ([]byte, error)
}
