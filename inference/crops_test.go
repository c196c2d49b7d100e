package inference

import (
	"context"
	"image"
	"testing"

	"github.com/nvr-ai/go-trafficlight/images"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func newFrame(t *testing.T, width, height int) gocv.Mat {
	t.Helper()
	frame := gocv.NewMatWithSize(height, width, gocv.MatTypeCV8UC3)
	t.Cleanup(func() { frame.Close() })
	return frame
}

func TestExtractCropsClipsAndResizes(t *testing.T) {
	frame := newFrame(t, 200, 100)
	before := frame.ToBytes()

	boxes := []BoundingBox{
		{Label: "traffic light", Confidence: 0.9, X1: 10.7, Y1: 5.2, X2: 30.9, Y2: 60.1},
		{Label: "traffic light", Confidence: 0.8, X1: -20, Y1: -10, X2: 15, Y2: 40},
		{Label: "traffic light", Confidence: 0.7, X1: 190, Y1: 80, X2: 260, Y2: 150},
	}

	crops := ExtractCrops(frame, boxes, image.Pt(120, 320))
	defer CloseCrops(crops)
	require.Len(t, crops, 3)

	assert.Equal(t, images.Rect{X1: 10, Y1: 5, X2: 30, Y2: 60}, crops[0].Region)
	assert.Equal(t, images.Rect{X1: 0, Y1: 0, X2: 15, Y2: 40}, crops[1].Region)
	assert.Equal(t, images.Rect{X1: 190, Y1: 80, X2: 200, Y2: 100}, crops[2].Region)

	for _, c := range crops {
		assert.Equal(t, 120, c.Mat.Cols())
		assert.Equal(t, 320, c.Mat.Rows())
		assert.Equal(t, gocv.MatTypeCV8UC3, c.Mat.Type())
	}
	assert.Equal(t, boxes[1], crops[1].Box)
	assert.Equal(t, before, frame.ToBytes())
}

func TestExtractCropsSkipsZeroArea(t *testing.T) {
	frame := newFrame(t, 64, 64)

	crops := ExtractCrops(frame, []BoundingBox{
		{X1: 10, Y1: 10, X2: 10, Y2: 40},
		{X1: 100, Y1: 100, X2: 120, Y2: 140},
		{X1: 20, Y1: 30, X2: 10, Y2: 50},
		{X1: 5, Y1: 5, X2: 15, Y2: 25},
	}, image.Pt(12, 32))
	defer CloseCrops(crops)

	require.Len(t, crops, 1)
	assert.Equal(t, images.Rect{X1: 5, Y1: 5, X2: 15, Y2: 25}, crops[0].Region)
}

func TestExtractCropsEmptyFrame(t *testing.T) {
	empty := gocv.NewMat()
	defer empty.Close()
	assert.Empty(t, ExtractCrops(empty, []BoundingBox{{X2: 5, Y2: 5}}, image.Pt(12, 32)))
}

func TestClosedDetector(t *testing.T) {
	d := &ONNXDetector{cfg: DefaultConfig()}
	frame := newFrame(t, 8, 8)

	_, err := d.Detect(context.Background(), frame)
	assert.True(t, errors.Is(err, ErrDetectorClosed))
	assert.NoError(t, d.Close())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = d.Detect(ctx, frame)
	assert.True(t, errors.Is(err, context.Canceled))
}
