package classifier

import (
	"image"
	"math"

	"gocv.io/x/gocv"
)

// HSVImage is an interleaved 8-bit HSV buffer with OpenCV conventions:
// hue in [0, 179], saturation and value in [0, 255].
type HSVImage struct {
	Width  int
	Height int
	// Pix holds H, S, V triplets in row-major order.
	Pix []uint8
}

// At returns the HSV triplet at (x, y).
func (h HSVImage) At(x, y int) (hue, sat, val uint8) {
	i := (y*h.Width + x) * 3
	return h.Pix[i], h.Pix[i+1], h.Pix[i+2]
}

// normalizeContrast equalizes local contrast on the lightness channel only.
// The crop is converted to Lab, CLAHE is applied to L, and the result is
// converted back to BGR. The input Mat is left untouched; the caller owns the
// returned Mat.
func normalizeContrast(crop gocv.Mat, cfg *Config) gocv.Mat {
	lab := gocv.NewMat()
	defer lab.Close()
	gocv.CvtColor(crop, &lab, gocv.ColorBGRToLab)

	channels := gocv.Split(lab)
	defer func() {
		for _, ch := range channels {
			ch.Close()
		}
	}()

	clahe := gocv.NewCLAHEWithParams(cfg.ClipLimit, image.Point{X: cfg.TileGrid.Cols, Y: cfg.TileGrid.Rows})
	defer clahe.Close()

	equalized := gocv.NewMat()
	defer equalized.Close()
	clahe.Apply(channels[0], &equalized)

	merged := gocv.NewMat()
	defer merged.Close()
	gocv.Merge([]gocv.Mat{equalized, channels[1], channels[2]}, &merged)

	out := gocv.NewMat()
	gocv.CvtColor(merged, &out, gocv.ColorLabToBGR)
	return out
}

// toHSV maps a BGR Mat into a Go-owned HSV buffer.
func toHSV(bgr gocv.Mat) HSVImage {
	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(bgr, &hsv, gocv.ColorBGRToHSV)

	return HSVImage{
		Width:  hsv.Cols(),
		Height: hsv.Rows(),
		Pix:    hsv.ToBytes(),
	}
}

// BandBrightness returns the mean value channel of each band. Empty bands
// yield NaN so that every brightness comparison against them is false.
//
// Arguments:
//   - hsv: The HSV image.
//   - bands: The row bands from Partition.
//
// Returns:
//   - [3]float64: Mean V per band, indexed by BandIndex.
func BandBrightness(hsv HSVImage, bands [3]Band) [3]float64 {
	var out [3]float64
	for _, b := range bands {
		n := b.Rows() * hsv.Width
		if n <= 0 {
			out[b.Index] = math.NaN()
			continue
		}
		var sum uint64
		for y := b.Start; y < b.End; y++ {
			row := hsv.Pix[y*hsv.Width*3 : (y+1)*hsv.Width*3]
			for x := 2; x < len(row); x += 3 {
				sum += uint64(row[x])
			}
		}
		out[b.Index] = float64(sum) / float64(n)
	}
	return out
}
