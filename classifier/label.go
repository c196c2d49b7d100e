// Package classifier - Deterministic traffic light color classification for
// detector crops.
package classifier

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Label is the illuminated color of a traffic light crop.
//
// The numeric order matches the class list used by the traffic light dataset
// the thresholds were tuned on: Green, Red, Yellow.
type Label int

const (
	// Green means the bottom lamp is lit.
	Green Label = iota
	// Red means the top lamp is lit.
	Red
	// Yellow means the middle lamp is lit.
	Yellow
)

// Labels lists every label in class index order.
var Labels = []Label{Green, Red, Yellow}

var labelNames = [...]string{
	Green:  "Green",
	Red:    "Red",
	Yellow: "Yellow",
}

// String returns the display name of the label.
func (l Label) String() string {
	if l < Green || l > Yellow {
		return "Label(" + strconv.Itoa(int(l)) + ")"
	}
	return labelNames[l]
}

// Valid reports whether l is one of the three known labels.
func (l Label) Valid() bool {
	return l >= Green && l <= Yellow
}

// MarshalText encodes the label as its display name, so results serialize
// as {"label": "Red"}.
func (l Label) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, errors.Errorf("invalid label %d", int(l))
	}
	return []byte(labelNames[l]), nil
}

// UnmarshalText decodes a display name, case-insensitively.
func (l *Label) UnmarshalText(text []byte) error {
	parsed, err := ParseLabel(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// ParseLabel parses a label name such as "red" or "Yellow".
//
// Arguments:
//   - s: The label name.
//
// Returns:
//   - Label: The parsed label.
//   - error: An error if s does not name a label.
func ParseLabel(s string) (Label, error) {
	for _, l := range Labels {
		if strings.EqualFold(strings.TrimSpace(s), labelNames[l]) {
			return l, nil
		}
	}
	return Green, errors.Errorf("unknown traffic light label %q", s)
}
