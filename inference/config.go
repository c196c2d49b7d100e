// Package inference - Traffic light detection with a YOLO model on ONNX Runtime.
package inference

import (
	"runtime"

	"github.com/pkg/errors"
)

// ErrInvalidConfig is returned when a detector configuration cannot be used.
var ErrInvalidConfig = errors.New("invalid detector config")

// Config represents the configuration for the ONNX detector.
type Config struct {
	// ModelPath specifies the path to the ONNX model file.
	ModelPath string `json:"model_path" yaml:"model_path"`

	// LibraryPath overrides the onnxruntime shared library location.
	LibraryPath string `json:"library_path" yaml:"library_path"`

	// Provider selects the execution provider.
	Provider Provider `json:"provider" yaml:"provider"`

	// ProviderOptions are passed through to the execution provider.
	ProviderOptions map[string]string `json:"provider_options" yaml:"provider_options"`

	// InputSize is the square model input edge in pixels.
	InputSize int `json:"input_size" yaml:"input_size"`

	// ClassNames lists the model classes in output order.
	ClassNames []string `json:"class_names" yaml:"class_names"`

	// ConfidenceThreshold filters detections below this confidence level.
	ConfidenceThreshold float32 `json:"confidence_threshold" yaml:"confidence_threshold"`

	// NMSThreshold controls the Non-Maximum Suppression IoU threshold.
	NMSThreshold float32 `json:"nms_threshold" yaml:"nms_threshold"`

	// IntraOpThreads sets threads for parallelizing ops. 0 lets ORT decide.
	IntraOpThreads int `json:"intra_op_threads" yaml:"intra_op_threads"`

	// InterOpThreads sets threads for parallelizing independent ops.
	InterOpThreads int `json:"inter_op_threads" yaml:"inter_op_threads"`
}

// DefaultConfig returns a configuration for a single-class traffic light model.
//
// Returns:
//   - Config: The default configuration. ModelPath must still be set.
//
// @example
// cfg := DefaultConfig()
// cfg.ModelPath = "models/traffic_light_yolo.onnx"
// detector, err := NewONNXDetector(cfg)
func DefaultConfig() Config {
	numCPU := runtime.NumCPU()

	return Config{
		Provider:            CPUExecutionProvider,
		ProviderOptions:     map[string]string{},
		InputSize:           640,
		ClassNames:          []string{"traffic light"},
		ConfidenceThreshold: 0.25,
		NMSThreshold:        0.7,
		IntraOpThreads:      max(1, numCPU/2),
		InterOpThreads:      max(1, numCPU/4),
	}
}

// Validate checks that the configuration describes a usable model.
func (c Config) Validate() error {
	if c.InputSize <= 0 || c.InputSize%32 != 0 {
		return errors.Wrapf(ErrInvalidConfig, "input size must be a positive multiple of 32, got %d", c.InputSize)
	}
	if len(c.ClassNames) == 0 {
		return errors.Wrap(ErrInvalidConfig, "at least one class name is required")
	}
	if c.ConfidenceThreshold < 0 || c.ConfidenceThreshold > 1 {
		return errors.Wrapf(ErrInvalidConfig, "confidence threshold %v outside [0, 1]", c.ConfidenceThreshold)
	}
	if c.NMSThreshold < 0 || c.NMSThreshold > 1 {
		return errors.Wrapf(ErrInvalidConfig, "nms threshold %v outside [0, 1]", c.NMSThreshold)
	}
	if c.IntraOpThreads < 0 || c.InterOpThreads < 0 {
		return errors.Wrap(ErrInvalidConfig, "thread counts must not be negative")
	}
	switch c.Provider {
	case CPUExecutionProvider, CUDAExecutionProvider, CoreMLExecutionProvider, OpenVINOExecutionProvider:
	default:
		return errors.Wrapf(ErrInvalidConfig, "unsupported execution provider %q", c.Provider)
	}
	return nil
}

// AnchorCount returns the number of candidate boxes a YOLOv8-style head emits
// for the configured input size: one per cell of the stride 8, 16 and 32 grids.
//
// @example
// DefaultConfig().AnchorCount() // 8400
func (c Config) AnchorCount() int {
	n := 0
	for _, stride := range []int{8, 16, 32} {
		side := c.InputSize / stride
		n += side * side
	}
	return n
}
