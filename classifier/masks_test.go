package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solidHSV(width, height int, h, s, v uint8) HSVImage {
	img := HSVImage{Width: width, Height: height, Pix: make([]uint8, width*height*3)}
	for i := 0; i < len(img.Pix); i += 3 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2] = h, s, v
	}
	return img
}

func TestHueWrapAround(t *testing.T) {
	th := DefaultConfig().Thresholds

	assert.True(t, th.IsRed(0, 255, 255), "hue 0 is red")
	assert.True(t, th.IsRed(179, 255, 255), "hue 179 is red")
	assert.False(t, th.IsRed(30, 255, 255), "mid-yellow hue is not red")
	assert.True(t, th.IsYellow(30, 255, 255))
	assert.False(t, th.IsGreen(30, 255, 255))
}

func TestMaskPredicates(t *testing.T) {
	th := DefaultConfig().Thresholds

	tests := []struct {
		name                string
		h, s, v             uint8
		red, yellow, green bool
	}{
		{name: "red low", h: 5, s: 200, v: 200, red: true},
		{name: "red high", h: 175, s: 200, v: 200, red: true},
		{name: "red bound 10 is a gap", h: 10, s: 200, v: 200},
		{name: "red bound 170 is a gap", h: 170, s: 200, v: 200},
		{name: "orange gap", h: 15, s: 200, v: 200},
		{name: "yellow", h: 25, s: 200, v: 200, yellow: true},
		{name: "hue 40 belongs to neither", h: 40, s: 200, v: 200},
		{name: "green", h: 60, s: 200, v: 200, green: true},
		{name: "blue gap", h: 110, s: 200, v: 200},
		{name: "washed out", h: 0, s: 100, v: 255},
		{name: "dark", h: 60, s: 255, v: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.red, th.IsRed(tt.h, tt.s, tt.v), "red")
			assert.Equal(t, tt.yellow, th.IsYellow(tt.h, tt.s, tt.v), "yellow")
			assert.Equal(t, tt.green, th.IsGreen(tt.h, tt.s, tt.v), "green")
		})
	}
}

func TestGenerateMasksAndCounts(t *testing.T) {
	img := solidHSV(4, 6, 0, 0, 0)
	// Row 0: red, row 3: yellow, row 5: green, everything else dark.
	for x := 0; x < 4; x++ {
		copy(img.Pix[(0*4+x)*3:], []uint8{0, 255, 255})
		copy(img.Pix[(3*4+x)*3:], []uint8{30, 255, 255})
		copy(img.Pix[(5*4+x)*3:], []uint8{60, 255, 255})
	}

	masks := GenerateMasks(img, DefaultConfig().Thresholds)
	require.Len(t, masks.Red.Bits, 24)
	assert.True(t, masks.Red.At(2, 0))
	assert.False(t, masks.Red.At(2, 1))

	assert.Equal(t, PixelCounts{Red: 4, Yellow: 4, Green: 4}, masks.Totals())

	counts := CountBands(masks, Partition(img.Height))
	assert.Equal(t, [3]int{4, 0, 0}, counts.Red)
	assert.Equal(t, [3]int{0, 4, 0}, counts.Yellow)
	assert.Equal(t, [3]int{0, 0, 4}, counts.Green)
}

func TestScoreUsesPositionalWeights(t *testing.T) {
	w := DefaultConfig().Weights

	s := Score(BandCounts{Red: [3]int{2700, 0, 0}}, w)
	assert.InDelta(t, 4050.0, s.Red, 1e-9)
	assert.Zero(t, s.Yellow)
	assert.Zero(t, s.Green)

	s = Score(BandCounts{
		Red:    [3]int{10, 10, 10},
		Yellow: [3]int{10, 10, 10},
		Green:  [3]int{10, 10, 10},
	}, w)
	assert.InDelta(t, 26.0, s.Red, 1e-9)
	assert.InDelta(t, 21.0, s.Yellow, 1e-9)
	assert.InDelta(t, 26.0, s.Green, 1e-9)
}

func TestBandBrightness(t *testing.T) {
	img := solidHSV(2, 3, 0, 0, 0)
	for x := 0; x < 2; x++ {
		img.Pix[(0*2+x)*3+2] = 90
		img.Pix[(1*2+x)*3+2] = 30
		img.Pix[(2*2+x)*3+2] = 60
	}
	b := BandBrightness(img, Partition(3))
	assert.Equal(t, [3]float64{90, 30, 60}, b)

	empty := BandBrightness(solidHSV(2, 1, 0, 0, 50), Partition(1))
	assert.NotEqual(t, empty[Top], empty[Top], "empty band brightness is NaN")
	assert.Equal(t, 50.0, empty[Bottom])
}
