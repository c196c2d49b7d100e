package classifier

// Mask is a per-pixel boolean grid over an HSVImage.
type Mask struct {
	Width  int
	Height int
	Bits   []bool
}

func newMask(width, height int) Mask {
	return Mask{Width: width, Height: height, Bits: make([]bool, width*height)}
}

// At reports whether the pixel at (x, y) is set.
func (m Mask) At(x, y int) bool {
	return m.Bits[y*m.Width+x]
}

// Count returns the number of set pixels.
func (m Mask) Count() int {
	return m.CountRows(0, m.Height)
}

// CountRows returns the number of set pixels in rows [start, end).
func (m Mask) CountRows(start, end int) int {
	n := 0
	for _, set := range m.Bits[start*m.Width : end*m.Width] {
		if set {
			n++
		}
	}
	return n
}

// Masks holds one mask per candidate color. A pixel may be set in more than
// one mask.
type Masks struct {
	Red    Mask
	Yellow Mask
	Green  Mask
}

// PixelCounts is the band-agnostic number of set pixels per color.
type PixelCounts struct {
	Red    int `json:"red"`
	Yellow int `json:"yellow"`
	Green  int `json:"green"`
}

// Totals counts every mask over the whole crop.
func (m Masks) Totals() PixelCounts {
	return PixelCounts{
		Red:    m.Red.Count(),
		Yellow: m.Yellow.Count(),
		Green:  m.Green.Count(),
	}
}

// bright reports whether a pixel carries enough saturation and value to count
// as color evidence.
func (t HSVThresholds) bright(s, v uint8) bool {
	return int(s) > t.SatMin && int(v) > t.ValMin
}

// IsRed reports whether the pixel falls in the red band. Red wraps around
// the hue circle, so both ends count.
func (t HSVThresholds) IsRed(h, s, v uint8) bool {
	return (int(h) < t.RedLowMax || int(h) > t.RedHighMin) && t.bright(s, v)
}

// IsYellow reports whether the pixel falls in the yellow band.
func (t HSVThresholds) IsYellow(h, s, v uint8) bool {
	return int(h) > t.YellowMin && int(h) < t.YellowMax && t.bright(s, v)
}

// IsGreen reports whether the pixel falls in the green band.
func (t HSVThresholds) IsGreen(h, s, v uint8) bool {
	return int(h) > t.GreenMin && int(h) < t.GreenMax && t.bright(s, v)
}

// GenerateMasks evaluates the three color predicates for every pixel.
//
// Arguments:
//   - hsv: The HSV image.
//   - t: The color thresholds.
//
// Returns:
//   - Masks: Red, yellow and green masks with the shape of hsv.
func GenerateMasks(hsv HSVImage, t HSVThresholds) Masks {
	masks := Masks{
		Red:    newMask(hsv.Width, hsv.Height),
		Yellow: newMask(hsv.Width, hsv.Height),
		Green:  newMask(hsv.Width, hsv.Height),
	}
	for i, p := 0, 0; p+2 < len(hsv.Pix); i, p = i+1, p+3 {
		h, s, v := hsv.Pix[p], hsv.Pix[p+1], hsv.Pix[p+2]
		masks.Red.Bits[i] = t.IsRed(h, s, v)
		masks.Yellow.Bits[i] = t.IsYellow(h, s, v)
		masks.Green.Bits[i] = t.IsGreen(h, s, v)
	}
	return masks
}
