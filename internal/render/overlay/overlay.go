// Package overlay renders condition-coded heatmap overlays as PNG.
package overlay

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	"facadescan-backend/internal/detect"
	"facadescan-backend/internal/render"
	"facadescan-backend/internal/thermal"
)

// conditionColors are the translucent fill colors per condition rating.
var conditionColors = map[string]color.NRGBA{
	thermal.ConditionGood:     {R: 46, G: 160, B: 67, A: 96},
	thermal.ConditionFair:     {R: 212, G: 167, B: 44, A: 96},
	thermal.ConditionPoor:     {R: 219, G: 109, B: 40, A: 112},
	thermal.ConditionCritical: {R: 207, G: 34, B: 46, A: 128},
}

var unknownConditionColor = color.NRGBA{R: 110, G: 118, B: 129, A: 96}

// Renderer draws each detected component's bounding box over the source
// image with a condition-coded fill and encodes the result as PNG.
type Renderer struct{}

// New constructs an overlay renderer.
func New() *Renderer {
	return &Renderer{}
}

// Render produces the overlay PNG bytes.
func (r *Renderer) Render(ctx context.Context, img image.Image, components []render.Component) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if img == nil {
		return nil, fmt.Errorf("nil source image")
	}

	bounds := img.Bounds()
	canvas := image.NewNRGBA(bounds)
	draw.Draw(canvas, bounds, img, bounds.Min, draw.Src)

	for _, comp := range components {
		box := clampBox(comp.Detection.BoundingBox, bounds)
		if box.Empty() {
			continue
		}
		fill, ok := conditionColors[comp.Condition]
		if !ok {
			fill = unknownConditionColor
		}
		draw.DrawMask(canvas, box, image.NewUniform(fill), image.Point{}, nil, image.Point{}, draw.Over)
		drawBorder(canvas, box, color.NRGBA{R: fill.R, G: fill.G, B: fill.B, A: 255})
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, fmt.Errorf("encode overlay png: %w", err)
	}
	return buf.Bytes(), nil
}

func clampBox(b detect.BoundingBox, bounds image.Rectangle) image.Rectangle {
	box := image.Rect(int(b.XMin), int(b.YMin), int(b.XMax), int(b.YMax))
	return box.Intersect(bounds)
}

func drawBorder(canvas *image.NRGBA, box image.Rectangle, c color.NRGBA) {
	for x := box.Min.X; x < box.Max.X; x++ {
		canvas.SetNRGBA(x, box.Min.Y, c)
		canvas.SetNRGBA(x, box.Max.Y-1, c)
	}
	for y := box.Min.Y; y < box.Max.Y; y++ {
		canvas.SetNRGBA(box.Min.X, y, c)
		canvas.SetNRGBA(box.Max.X-1, y, c)
	}
}

var _ render.Renderer = (*Renderer)(nil)
