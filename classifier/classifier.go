package classifier

import (
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// ErrMalformedCrop is returned by ValidateCrop for crops the engine cannot
// classify: empty, zero-area or not 8-bit 3-channel.
var ErrMalformedCrop = errors.New("malformed crop")

// Classifier labels traffic light crops. It holds only an immutable Config and
// is safe for concurrent use.
type Classifier struct {
	cfg *Config
}

// New creates a classifier from a validated copy of cfg.
//
// Arguments:
//   - cfg: The thresholds and weights to classify with.
//
// Returns:
//   - *Classifier: The classifier.
//   - error: An error if cfg is invalid.
//
// @example
// c, err := classifier.New(classifier.DefaultConfig())
//
//	if err != nil {
//	    return err
//	}
//
// label := c.Classify(crop)
func New(cfg Config) (*Classifier, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Classifier{cfg: &cfg}, nil
}

// Config returns a copy of the classifier's configuration.
func (c *Classifier) Config() Config {
	return *c.cfg
}

// ValidateCrop checks the engine precondition. Callers run it at the boundary
// before Classify.
//
// Arguments:
//   - crop: The candidate crop.
//
// Returns:
//   - error: An error wrapping ErrMalformedCrop, or nil.
func ValidateCrop(crop gocv.Mat) error {
	if crop.Empty() {
		return errors.Wrap(ErrMalformedCrop, "crop is empty")
	}
	if crop.Rows() < 1 || crop.Cols() < 1 {
		return errors.Wrapf(ErrMalformedCrop, "crop has zero area (%dx%d)", crop.Cols(), crop.Rows())
	}
	if crop.Type() != gocv.MatTypeCV8UC3 {
		return errors.Wrapf(ErrMalformedCrop, "crop must be 8-bit 3-channel, got %d channels of type %d",
			crop.Channels(), int(crop.Type()))
	}
	return nil
}

// Classify returns the lit color of a BGR crop.
//
// The crop must satisfy ValidateCrop. Classify never fails for such crops and
// never modifies them.
func (c *Classifier) Classify(crop gocv.Mat) Label {
	return c.Explain(crop).Label
}

// Explain runs the full engine and returns the decision with all evidence:
// band counts, weighted scores, raw pixel totals and band brightness.
func (c *Classifier) Explain(crop gocv.Mat) Decision {
	normalized := normalizeContrast(crop, c.cfg)
	hsv := toHSV(normalized)
	normalized.Close()

	return c.ExplainHSV(hsv)
}

// ExplainHSV runs masking, scoring and the cascade on an already mapped HSV
// image. Contrast normalization is skipped.
func (c *Classifier) ExplainHSV(hsv HSVImage) Decision {
	bands := Partition(hsv.Height)
	masks := GenerateMasks(hsv, c.cfg.Thresholds)
	counts := CountBands(masks, bands)

	return Decide(Evidence{
		Counts:     counts,
		Scores:     Score(counts, c.cfg.Weights),
		Pixels:     masks.Totals(),
		Brightness: BandBrightness(hsv, bands),
	}, c.cfg)
}
