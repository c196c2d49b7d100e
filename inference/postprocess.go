package inference

import (
	"sort"

	"github.com/chewxy/math32"
	"github.com/pkg/errors"
)

// OutputParams describes how to decode a raw YOLO output tensor.
type OutputParams struct {
	// InputSize is the square model input edge the boxes are expressed in.
	InputSize int
	// Width and Height are the original image dimensions to rescale into.
	Width, Height int
	// ClassNames lists the classes in output row order.
	ClassNames []string
	// ConfidenceThreshold drops candidates scoring below it.
	ConfidenceThreshold float32
	// NMSThreshold suppresses same-class boxes overlapping a stronger one by
	// more than this IoU.
	NMSThreshold float32
}

// ProcessOutput decodes a [1, 4+C, N] YOLOv8 output tensor into boxes in
// original image coordinates, strongest first, after greedy per-class NMS.
//
// Each of the N columns holds (cx, cy, w, h) in input pixels followed by C
// class scores. The best class score is the candidate's confidence.
//
// Arguments:
//   - output: The flattened output tensor data.
//   - p: Decoding parameters.
//
// Returns:
//   - []BoundingBox: The surviving detections.
//   - error: An error if the tensor does not match the class count.
func ProcessOutput(output []float32, p OutputParams) ([]BoundingBox, error) {
	classes := len(p.ClassNames)
	rows := 4 + classes
	if classes == 0 || len(output)%rows != 0 {
		return nil, errors.Errorf("output of %d floats does not fit %d rows", len(output), rows)
	}
	if p.InputSize <= 0 {
		return nil, errors.Errorf("invalid input size %d", p.InputSize)
	}
	anchors := len(output) / rows

	scaleX := float32(p.Width) / float32(p.InputSize)
	scaleY := float32(p.Height) / float32(p.InputSize)

	boxes := make([]BoundingBox, 0, 16)
	for idx := 0; idx < anchors; idx++ {
		classID := 0
		probability := float32(-1e9)
		for col := 0; col < classes; col++ {
			if score := output[anchors*(col+4)+idx]; score > probability {
				probability = score
				classID = col
			}
		}
		if probability < p.ConfidenceThreshold {
			continue
		}

		xc, yc := output[idx], output[anchors+idx]
		w, h := output[2*anchors+idx], output[3*anchors+idx]
		boxes = append(boxes, BoundingBox{
			Label:      p.ClassNames[classID],
			ClassID:    classID,
			Confidence: clampScore(probability),
			X1:         (xc - w/2) * scaleX,
			Y1:         (yc - h/2) * scaleY,
			X2:         (xc + w/2) * scaleX,
			Y2:         (yc + h/2) * scaleY,
		})
	}

	return ApplyNMS(boxes, p.NMSThreshold), nil
}

// ApplyNMS performs greedy Non-Maximum Suppression. Boxes are visited in
// descending confidence; a box is kept unless a kept box of the same class
// overlaps it by more than threshold.
//
// Arguments:
//   - boxes: Candidate boxes. The slice is reordered in place.
//   - threshold: The IoU above which a weaker box is suppressed.
//
// Returns:
//   - []BoundingBox: Kept boxes, strongest first.
func ApplyNMS(boxes []BoundingBox, threshold float32) []BoundingBox {
	if len(boxes) == 0 {
		return []BoundingBox{}
	}

	sort.SliceStable(boxes, func(i, j int) bool {
		return boxes[i].Confidence > boxes[j].Confidence
	})

	kept := make([]BoundingBox, 0, len(boxes))
	for _, candidate := range boxes {
		suppressed := false
		for _, existing := range kept {
			if existing.ClassID == candidate.ClassID && candidate.IOU(existing) > threshold {
				suppressed = true
				break
			}
		}
		if !suppressed {
			kept = append(kept, candidate)
		}
	}
	return kept
}

// clampScore keeps reported confidences inside [0, 1].
func clampScore(v float32) float32 {
	return math32.Min(1, math32.Max(0, v))
}
