package classifier

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned when a Config fails validation.
var ErrInvalidConfig = errors.New("invalid classifier config")

// maxHue is the largest hue value in OpenCV's 8-bit HSV encoding (hue/2).
const maxHue = 179

// TileGrid is the number of CLAHE tiles along each axis.
type TileGrid struct {
	Rows int `json:"rows" yaml:"rows"`
	Cols int `json:"cols" yaml:"cols"`
}

// HSVThresholds holds the color mask bounds.
//
// Hue is on the 0-179 scale, saturation and value on 0-255. Every bound is
// exclusive, so a hue equal to a bound falls into the no-color gap.
type HSVThresholds struct {
	// RedLowMax bounds the low end of the red wrap-around band (h < RedLowMax).
	RedLowMax int `json:"red_low_max" yaml:"red_low_max"`
	// RedHighMin bounds the high end of the red wrap-around band (h > RedHighMin).
	RedHighMin int `json:"red_high_min" yaml:"red_high_min"`
	YellowMin  int `json:"yellow_min" yaml:"yellow_min"`
	YellowMax  int `json:"yellow_max" yaml:"yellow_max"`
	GreenMin   int `json:"green_min" yaml:"green_min"`
	GreenMax   int `json:"green_max" yaml:"green_max"`
	// SatMin rejects washed-out pixels (s > SatMin).
	SatMin int `json:"sat_min" yaml:"sat_min"`
	// ValMin rejects dark pixels (v > ValMin).
	ValMin int `json:"val_min" yaml:"val_min"`
}

// BandWeights weighs a color's mask counts in the top, middle and bottom band.
type BandWeights struct {
	Top    float64 `json:"top" yaml:"top"`
	Middle float64 `json:"middle" yaml:"middle"`
	Bottom float64 `json:"bottom" yaml:"bottom"`
}

// Weights holds the positional weights per color.
type Weights struct {
	Red    BandWeights `json:"red" yaml:"red"`
	Yellow BandWeights `json:"yellow" yaml:"yellow"`
	Green  BandWeights `json:"green" yaml:"green"`
}

// Config is the immutable parameter set of a Classifier.
//
// Build it once with DefaultConfig or LoadConfig and share it by pointer;
// nothing in this package mutates a Config after New returns.
type Config struct {
	// ClipLimit caps per-tile histogram bin height during CLAHE.
	ClipLimit float64 `json:"clip_limit" yaml:"clip_limit"`
	// TileGrid controls the locality of equalization.
	TileGrid TileGrid `json:"tile_grid" yaml:"tile_grid"`
	// Thresholds are the HSV color mask bounds.
	Thresholds HSVThresholds `json:"thresholds" yaml:"thresholds"`
	// Weights are the positional band weights of the scorer.
	Weights Weights `json:"weights" yaml:"weights"`
	// ScoreFloor is the weighted score a color must exceed in tier 1.
	ScoreFloor float64 `json:"score_floor" yaml:"score_floor"`
	// PixelFloor is the raw mask pixel count a color must exceed in tier 2.
	PixelFloor int `json:"pixel_floor" yaml:"pixel_floor"`
}

// DefaultConfig returns the empirically tuned thresholds and weights.
//
// These values have no documented derivation. Changing any of them changes
// classification output.
//
// Returns:
//   - Config: The default configuration.
//
// @example
// cfg := DefaultConfig()
// c, err := New(cfg)
func DefaultConfig() Config {
	return Config{
		ClipLimit: 3.0,
		TileGrid:  TileGrid{Rows: 8, Cols: 8},
		Thresholds: HSVThresholds{
			RedLowMax:  10,
			RedHighMin: 170,
			YellowMin:  20,
			YellowMax:  40,
			GreenMin:   40,
			GreenMax:   80,
			SatMin:     100,
			ValMin:     100,
		},
		Weights: Weights{
			Red:    BandWeights{Top: 1.5, Middle: 0.8, Bottom: 0.3},
			Yellow: BandWeights{Top: 0.3, Middle: 1.5, Bottom: 0.3},
			Green:  BandWeights{Top: 0.3, Middle: 0.8, Bottom: 1.5},
		},
		ScoreFloor: 50,
		PixelFloor: 20,
	}
}

// Validate checks that the config describes non-overlapping hue bands within
// the hue circle and non-negative weights and floors.
//
// Returns:
//   - error: An error wrapping ErrInvalidConfig, or nil.
func (c Config) Validate() error {
	if c.ClipLimit <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "clip_limit must be positive, got %v", c.ClipLimit)
	}
	if c.TileGrid.Rows < 1 || c.TileGrid.Cols < 1 {
		return errors.Wrapf(ErrInvalidConfig, "tile_grid must be at least 1x1, got %dx%d",
			c.TileGrid.Rows, c.TileGrid.Cols)
	}

	t := c.Thresholds
	for _, bound := range []struct {
		name  string
		value int
	}{
		{"red_low_max", t.RedLowMax},
		{"red_high_min", t.RedHighMin},
		{"yellow_min", t.YellowMin},
		{"yellow_max", t.YellowMax},
		{"green_min", t.GreenMin},
		{"green_max", t.GreenMax},
	} {
		if bound.value < 0 || bound.value > maxHue {
			return errors.Wrapf(ErrInvalidConfig, "%s must be within [0, %d], got %d",
				bound.name, maxHue, bound.value)
		}
	}
	// Exclusive bounds: a band (a, b) and a following band (c, d) are disjoint
	// as long as b <= c+1.
	switch {
	case t.RedLowMax > t.YellowMin+1:
		return errors.Wrap(ErrInvalidConfig, "red and yellow hue bands overlap")
	case t.YellowMin >= t.YellowMax:
		return errors.Wrap(ErrInvalidConfig, "yellow hue band is empty")
	case t.YellowMax > t.GreenMin+1:
		return errors.Wrap(ErrInvalidConfig, "yellow and green hue bands overlap")
	case t.GreenMin >= t.GreenMax:
		return errors.Wrap(ErrInvalidConfig, "green hue band is empty")
	case t.GreenMax > t.RedHighMin+1:
		return errors.Wrap(ErrInvalidConfig, "green and red hue bands overlap")
	}
	if t.SatMin < 0 || t.SatMin > 255 || t.ValMin < 0 || t.ValMin > 255 {
		return errors.Wrap(ErrInvalidConfig, "sat_min and val_min must be within [0, 255]")
	}

	for _, w := range []BandWeights{c.Weights.Red, c.Weights.Yellow, c.Weights.Green} {
		if w.Top < 0 || w.Middle < 0 || w.Bottom < 0 {
			return errors.Wrap(ErrInvalidConfig, "band weights must be non-negative")
		}
	}
	if c.ScoreFloor < 0 || c.PixelFloor < 0 {
		return errors.Wrap(ErrInvalidConfig, "score_floor and pixel_floor must be non-negative")
	}
	return nil
}

// LoadConfig reads a YAML threshold file on top of DefaultConfig.
//
// Keys missing from the file keep their default value.
//
// Arguments:
//   - path: Path to the YAML file.
//
// Returns:
//   - *Config: The validated configuration.
//   - error: An error if the file cannot be read, parsed or validated.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading classifier config %s", path)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrapf(err, "parsing classifier config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
