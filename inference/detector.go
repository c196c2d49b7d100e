package inference

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gocv.io/x/gocv"
)

// ErrDetectorClosed is returned by Detect after Close.
var ErrDetectorClosed = errors.New("detector closed")

// Detector finds traffic lights in a full frame.
type Detector interface {
	// Detect returns boxes in img's pixel coordinates, strongest first.
	Detect(ctx context.Context, img gocv.Mat) ([]BoundingBox, error)
	// Close releases the detector's resources.
	Close() error
}

// ONNXDetector runs a YOLO model through ONNX Runtime.
//
// The session's tensors are shared, so Detect calls are serialized.
type ONNXDetector struct {
	mu      sync.Mutex
	cfg     Config
	session *Session
}

// NewONNXDetector loads the model and binds its tensors.
//
// Arguments:
//   - cfg: The detector configuration.
//
// Returns:
//   - *ONNXDetector: The detector. The caller must Close it.
//   - error: An error if the model cannot be loaded.
func NewONNXDetector(cfg Config) (*ONNXDetector, error) {
	session, err := NewSession(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create detector session")
	}

	log.Info().
		Str("model", cfg.ModelPath).
		Str("provider", string(cfg.Provider)).
		Int("input_size", cfg.InputSize).
		Int("anchors", cfg.AnchorCount()).
		Msg("onnx detector ready")

	return &ONNXDetector{cfg: cfg, session: session}, nil
}

// Config returns the detector's configuration.
func (d *ONNXDetector) Config() Config {
	return d.cfg
}

// Detect runs inference on a BGR frame.
//
// Arguments:
//   - ctx: Cancels the call before inference starts.
//   - img: The frame to detect traffic lights in.
//
// Returns:
//   - []BoundingBox: The detections in frame coordinates.
//   - error: An error if preprocessing or inference fails.
func (d *ONNXDetector) Detect(ctx context.Context, img gocv.Mat) ([]BoundingBox, error) {
	if img.Empty() {
		return nil, errors.New("cannot detect on an empty image")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	frame, err := img.ToImage()
	if err != nil {
		return nil, errors.Wrap(err, "failed to convert frame")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.session == nil {
		return nil, ErrDetectorClosed
	}

	if err := PrepareInput(frame, d.session.Input.GetData(), d.cfg.InputSize); err != nil {
		return nil, errors.Wrap(err, "failed to prepare input")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := d.session.Session.Run(); err != nil {
		return nil, errors.Wrap(err, "failed to run inference")
	}

	return ProcessOutput(d.session.Output.GetData(), OutputParams{
		InputSize:           d.cfg.InputSize,
		Width:               img.Cols(),
		Height:              img.Rows(),
		ClassNames:          d.cfg.ClassNames,
		ConfidenceThreshold: d.cfg.ConfidenceThreshold,
		NMSThreshold:        d.cfg.NMSThreshold,
	})
}

// Close releases the session.
func (d *ONNXDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.session != nil {
		d.session.Close()
		d.session = nil
		log.Debug().Msg("onnx detector closed")
	}
	return nil
}
