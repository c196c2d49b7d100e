package inference

import (
	"runtime"
	"strconv"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	ort "github.com/yalue/onnxruntime_go"
)

// Provider represents different ONNX Runtime execution providers.
type Provider string

const (
	// CPUExecutionProvider uses CPU for inference.
	CPUExecutionProvider Provider = "cpu"

	// CUDAExecutionProvider uses NVIDIA CUDA for GPU acceleration.
	CUDAExecutionProvider Provider = "cuda"

	// CoreMLExecutionProvider uses Apple CoreML for macOS acceleration.
	CoreMLExecutionProvider Provider = "coreml"

	// OpenVINOExecutionProvider uses Intel OpenVINO for inference optimization.
	OpenVINOExecutionProvider Provider = "openvino"
)

// SharedLibPath returns the onnxruntime shared library to load. An explicit
// override wins; otherwise the platform default under ./third_party is used.
//
// Arguments:
//   - override: A path from configuration, or "".
//
// Returns:
//   - string: The path to the shared library.
//   - error: An error if no library is known for this platform.
func SharedLibPath(override string) (string, error) {
	if override != "" {
		return override, nil
	}

	switch runtime.GOOS {
	case "windows":
		if runtime.GOARCH == "amd64" {
			return "./third_party/onnxruntime.dll", nil
		}
	case "darwin":
		return "./third_party/libonnxruntime.dylib", nil
	case "linux":
		if runtime.GOARCH == "arm64" {
			return "./third_party/onnxruntime_arm64.so", nil
		}
		return "./third_party/onnxruntime.so", nil
	}
	return "", errors.Errorf("no onnxruntime library known for %s/%s", runtime.GOOS, runtime.GOARCH)
}

// sessionOptions builds ORT session options for the configured threads and
// execution provider. The caller destroys the returned options.
func sessionOptions(cfg Config) (*ort.SessionOptions, error) {
	options, err := ort.NewSessionOptions()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create session options")
	}

	if err := options.SetIntraOpNumThreads(cfg.IntraOpThreads); err != nil {
		options.Destroy()
		return nil, errors.Wrap(err, "failed to set intra-op threads")
	}
	if err := options.SetInterOpNumThreads(cfg.InterOpThreads); err != nil {
		options.Destroy()
		return nil, errors.Wrap(err, "failed to set inter-op threads")
	}
	if err := options.SetGraphOptimizationLevel(ort.GraphOptimizationLevelEnableExtended); err != nil {
		options.Destroy()
		return nil, errors.Wrap(err, "failed to set graph optimization level")
	}

	if err := appendProvider(options, cfg.Provider, cfg.ProviderOptions); err != nil {
		options.Destroy()
		return nil, err
	}
	return options, nil
}

func appendProvider(options *ort.SessionOptions, provider Provider, opts map[string]string) error {
	switch provider {
	case CPUExecutionProvider, "":
		// Always available.
		return nil

	case CoreMLExecutionProvider:
		flags := uint64(0)
		if v, ok := opts["flags"]; ok {
			parsed, err := strconv.ParseUint(v, 10, 32)
			if err != nil {
				return errors.Wrapf(err, "invalid coreml flags %q", v)
			}
			flags = parsed
		}
		if err := options.AppendExecutionProviderCoreML(uint32(flags)); err != nil {
			// Not every build ships CoreML; fall back to CPU.
			log.Warn().Err(err).Msg("coreml execution provider unavailable, using cpu")
		}
		return nil

	case OpenVINOExecutionProvider:
		if err := options.AppendExecutionProviderOpenVINO(opts); err != nil {
			log.Warn().Err(err).Msg("openvino execution provider unavailable, using cpu")
		}
		return nil

	case CUDAExecutionProvider:
		cuda, err := ort.NewCUDAProviderOptions()
		if err != nil {
			return errors.Wrap(err, "failed to create cuda provider options")
		}
		defer cuda.Destroy()
		if len(opts) > 0 {
			if err := cuda.Update(opts); err != nil {
				return errors.Wrap(err, "failed to apply cuda provider options")
			}
		}
		if err := options.AppendExecutionProviderCUDA(cuda); err != nil {
			return errors.Wrap(err, "failed to enable cuda execution provider")
		}
		return nil
	}

	return errors.Errorf("unsupported execution provider: %s", provider)
}
