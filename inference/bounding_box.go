package inference

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/nvr-ai/go-trafficlight/images"
)

// BoundingBox represents a detection with its label, confidence, and corner
// coordinates in original image pixels.
type BoundingBox struct {
	Label          string  `json:"label"`
	ClassID        int     `json:"class_id"`
	Confidence     float32 `json:"confidence"`
	X1, Y1, X2, Y2 float32
}

func (b BoundingBox) String() string {
	return fmt.Sprintf("Object %s (confidence %f): (%f, %f), (%f, %f)",
		b.Label, b.Confidence, b.X1, b.Y1, b.X2, b.Y2)
}

// Area returns the box area, or 0 for an inverted box.
func (b BoundingBox) Area() float32 {
	return math32.Max(0, b.X2-b.X1) * math32.Max(0, b.Y2-b.Y1)
}

// IOU returns the intersection over union of two boxes in continuous
// coordinates.
func (b BoundingBox) IOU(other BoundingBox) float32 {
	w := math32.Min(b.X2, other.X2) - math32.Max(b.X1, other.X1)
	h := math32.Min(b.Y2, other.Y2) - math32.Max(b.Y1, other.Y1)
	if w <= 0 || h <= 0 {
		return 0
	}
	inter := w * h
	union := b.Area() + other.Area() - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}

// Rect truncates the box to integer pixel corners. Fractional edges are
// dropped toward zero.
func (b BoundingBox) Rect() images.Rect {
	return images.Rect{X1: int(b.X1), Y1: int(b.Y1), X2: int(b.X2), Y2: int(b.Y2)}
}
