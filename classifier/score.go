package classifier

// BandCounts holds masked pixel counts per color, indexed by BandIndex.
type BandCounts struct {
	Red    [3]int `json:"red"`
	Yellow [3]int `json:"yellow"`
	Green  [3]int `json:"green"`
}

// Scores holds the weighted score per color.
type Scores struct {
	Red    float64 `json:"red"`
	Yellow float64 `json:"yellow"`
	Green  float64 `json:"green"`
}

// CountBands sums every mask inside every band's row range.
//
// Arguments:
//   - masks: The color masks.
//   - bands: The row bands from Partition.
//
// Returns:
//   - BandCounts: The per-band counts.
func CountBands(masks Masks, bands [3]Band) BandCounts {
	var c BandCounts
	for _, b := range bands {
		if b.Empty() {
			continue
		}
		c.Red[b.Index] = masks.Red.CountRows(b.Start, b.End)
		c.Yellow[b.Index] = masks.Yellow.CountRows(b.Start, b.End)
		c.Green[b.Index] = masks.Green.CountRows(b.Start, b.End)
	}
	return c
}

func (w BandWeights) apply(counts [3]int) float64 {
	return w.Top*float64(counts[Top]) +
		w.Middle*float64(counts[Middle]) +
		w.Bottom*float64(counts[Bottom])
}

// Score combines band counts with the positional weights. A mask firing in its
// home band (red top, yellow middle, green bottom) weighs the most.
//
// Arguments:
//   - counts: The per-band counts.
//   - w: The positional weights.
//
// Returns:
//   - Scores: The weighted score per color.
//
// @example
// s := Score(BandCounts{Red: [3]int{2700, 0, 0}}, DefaultConfig().Weights) // s.Red == 4050
func Score(counts BandCounts, w Weights) Scores {
	return Scores{
		Red:    w.Red.apply(counts.Red),
		Yellow: w.Yellow.apply(counts.Yellow),
		Green:  w.Green.apply(counts.Green),
	}
}
