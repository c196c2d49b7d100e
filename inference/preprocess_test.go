package inference

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrepareInputPlanarRGB(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 50, 30))
	for y := 0; y < 30; y++ {
		for x := 0; x < 50; x++ {
			img.Set(x, y, color.RGBA{R: 255, G: 51, B: 0, A: 255})
		}
	}

	const size = 32
	dst := make([]float32, 3*size*size)
	require.NoError(t, PrepareInput(img, dst, size))

	plane := size * size
	for _, i := range []int{0, plane / 2, plane - 1} {
		assert.InDelta(t, 1.0, dst[i], 0.01, "red plane")
		assert.InDelta(t, 0.2, dst[plane+i], 0.01, "green plane")
		assert.InDelta(t, 0.0, dst[2*plane+i], 0.01, "blue plane")
	}
}

func TestPrepareInputRejects(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	assert.Error(t, PrepareInput(img, make([]float32, 10), 32))
	assert.Error(t, PrepareInput(image.NewRGBA(image.Rectangle{}), make([]float32, 3*32*32), 32))
}
