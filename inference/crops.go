package inference

import (
	"image"

	"github.com/nvr-ai/go-trafficlight/images"
	"gocv.io/x/gocv"
)

// Crop is a detector region resized for classification. It owns Mat.
type Crop struct {
	// Box is the detection the crop came from.
	Box BoundingBox
	// Region is the clipped pixel rectangle cut from the frame.
	Region images.Rect
	// Mat is the resized BGR crop.
	Mat gocv.Mat
}

// Close releases the crop's pixels.
func (c *Crop) Close() error {
	return c.Mat.Close()
}

// CloseCrops releases every crop in the slice.
func CloseCrops(crops []Crop) {
	for i := range crops {
		crops[i].Close()
	}
}

// ExtractCrops cuts each box out of img and resizes it to size.
//
// Boxes are truncated to integer corners and clipped to the frame. Boxes that
// clip to zero area are skipped, so the result may be shorter than boxes.
//
// Arguments:
//   - img: The source frame. It is not modified.
//   - boxes: Detections in frame coordinates.
//   - size: The crop size as width (X) and height (Y).
//
// Returns:
//   - []Crop: The crops in box order. The caller closes them.
func ExtractCrops(img gocv.Mat, boxes []BoundingBox, size image.Point) []Crop {
	crops := make([]Crop, 0, len(boxes))
	if img.Empty() || size.X <= 0 || size.Y <= 0 {
		return crops
	}

	for _, box := range boxes {
		rect := box.Rect().Clip(img.Cols(), img.Rows())
		if rect.Empty() {
			continue
		}

		region := img.Region(rect.ToRectangle())
		resized := gocv.NewMat()
		gocv.Resize(region, &resized, size, 0, 0, gocv.InterpolationLinear)
		region.Close()

		crops = append(crops, Crop{Box: box, Region: rect, Mat: resized})
	}
	return crops
}
