package images

import (
	"encoding/base64"
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func solidImage(width, height int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	mat, err := gocv.ImageToMatRGB(solidImage(64, 48, color.RGBA{R: 200, G: 20, B: 10, A: 255}))
	require.NoError(t, err)
	defer mat.Close()
	assert.Equal(t, gocv.MatTypeCV8UC3, mat.Type())
	before := mat.ToBytes()

	encoded, err := EncodeJPEG(mat, DefaultJPEGQuality)
	require.NoError(t, err)
	assert.Equal(t, FormatJPEG, encoded.Format)
	assert.Equal(t, 64, encoded.Width)
	assert.Equal(t, 48, encoded.Height)
	assert.Equal(t, FormatJPEG, SniffFormat(encoded.Data))
	assert.Equal(t, before, mat.ToBytes(), "encoding must not modify the source")

	decoded, err := Decode(encoded.Data)
	require.NoError(t, err)
	defer decoded.Close()
	assert.Equal(t, 64, decoded.Cols())
	assert.Equal(t, 48, decoded.Rows())

	// BGR order, red channel last; JPEG is lossy.
	px := decoded.GetVecbAt(24, 32)
	assert.InDelta(t, 200, int(px[2]), 12)
	assert.InDelta(t, 10, int(px[0]), 12)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode(nil)
	assert.True(t, errors.Is(err, ErrEmptyImage))

	m, err := Decode([]byte("definitely not an image"))
	assert.Error(t, err)
	defer m.Close()
	assert.True(t, m.Empty())
}

func TestDataURI(t *testing.T) {
	img := Image{Format: FormatJPEG, Data: []byte{0xFF, 0xD8, 0x01}}
	uri := img.DataURI()
	require.True(t, strings.HasPrefix(uri, "data:image/jpeg;base64,"))

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, "data:image/jpeg;base64,"))
	require.NoError(t, err)
	assert.Equal(t, img.Data, raw)
}
