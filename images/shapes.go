package images

import "image"

// Rect is a lightweight bounding box in pixel coordinates.
type Rect struct {
	// X2,Y2 are exclusive (like image.Rectangle).
	X1, Y1, X2, Y2 int
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.X2 <= r.X1 || r.Y2 <= r.Y1
}

// Area returns the pixel area, or 0 for an empty rectangle.
func (r Rect) Area() int {
	if r.Empty() {
		return 0
	}
	return (r.X2 - r.X1) * (r.Y2 - r.Y1)
}

// Clip restricts the rectangle to a width x height frame. A rectangle that
// falls entirely outside the frame clips to an empty one.
//
// Arguments:
//   - width: The frame width.
//   - height: The frame height.
//
// Returns:
//   - Rect: The clipped rectangle.
//
// @example
// Rect{X1: -5, Y1: 10, X2: 50, Y2: 900}.Clip(640, 480) // {0 10 50 480}
func (r Rect) Clip(width, height int) Rect {
	return Rect{
		X1: clamp(r.X1, 0, width),
		Y1: clamp(r.Y1, 0, height),
		X2: clamp(r.X2, 0, width),
		Y2: clamp(r.Y2, 0, height),
	}
}

// ToRectangle converts to an image.Rectangle for use with gocv.
func (r Rect) ToRectangle() image.Rectangle {
	return image.Rect(r.X1, r.Y1, r.X2, r.Y2)
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
