package classifier

// BandIndex identifies one horizontal third of a crop.
type BandIndex int

const (
	// Top is the red lamp band.
	Top BandIndex = iota
	// Middle is the yellow lamp band.
	Middle
	// Bottom is the green lamp band.
	Bottom
)

// String returns the band name.
func (b BandIndex) String() string {
	switch b {
	case Top:
		return "top"
	case Middle:
		return "middle"
	case Bottom:
		return "bottom"
	}
	return "unknown"
}

// Band is the half-open row range [Start, End) of a crop.
type Band struct {
	Index BandIndex
	Start int
	End   int
}

// Rows returns the number of rows in the band. It is zero for empty bands.
func (b Band) Rows() int {
	return b.End - b.Start
}

// Empty reports whether the band covers no rows.
func (b Band) Empty() bool {
	return b.End <= b.Start
}

// Partition splits height rows into top, middle and bottom bands using floor
// division. The bottom band takes the remainder rows, and for heights below 3
// some bands are empty. The three ranges always cover [0, height) exactly.
//
// Arguments:
//   - height: The crop height in rows.
//
// Returns:
//   - [3]Band: The bands indexed by BandIndex.
//
// @example
// bands := Partition(100) // [0,33) [33,66) [66,100)
func Partition(height int) [3]Band {
	if height < 0 {
		height = 0
	}
	third := height / 3
	twoThirds := 2 * height / 3
	return [3]Band{
		{Index: Top, Start: 0, End: third},
		{Index: Middle, Start: third, End: twoThirds},
		{Index: Bottom, Start: twoThirds, End: height},
	}
}
