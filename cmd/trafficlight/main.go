// Command trafficlight classifies the traffic lights in an image and prints
// the results as JSON.
//
// Usage:
//
//	trafficlight [flags] <image-path>
//	trafficlight [flags] -dir <directory>
package main

import (
	"context"
	"encoding/json"
	"flag"
	"image"
	"io"
	"os"

	"github.com/nvr-ai/go-trafficlight/classifier"
	"github.com/nvr-ai/go-trafficlight/config"
	"github.com/nvr-ai/go-trafficlight/inference"
	"github.com/nvr-ai/go-trafficlight/logging"
	"github.com/nvr-ai/go-trafficlight/pipeline"
	"github.com/nvr-ai/go-trafficlight/util"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// errUsage is printed when no image is given.
var errUsage = errors.New("Please provide an image path")

type detectorFactory func(inference.Config) (inference.Detector, error)

func newONNXDetector(cfg inference.Config) (inference.Detector, error) {
	return inference.NewONNXDetector(cfg)
}

type errorOutput struct {
	Error string `json:"error"`
}

type fileResults struct {
	Path    string            `json:"path"`
	Results []pipeline.Result `json:"results"`
}

type fileError struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, newONNXDetector))
}

// run executes the command and returns the process exit code. All JSON goes to
// stdout; logs go to stderr.
func run(args []string, stdout io.Writer, newDetector detectorFactory) int {
	cfg := config.Load()

	fs := flag.NewFlagSet("trafficlight", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&cfg.ModelPath, "model", cfg.ModelPath, "Path to the YOLO traffic light ONNX model")
	fs.StringVar(&cfg.ORTLibraryPath, "ort-lib", cfg.ORTLibraryPath, "Path to the onnxruntime shared library")
	fs.Float64Var(&cfg.ConfidenceThreshold, "confidence", cfg.ConfidenceThreshold, "Detection confidence threshold")
	fs.StringVar(&cfg.ClassifierConfigPath, "classifier-config", cfg.ClassifierConfigPath, "Optional YAML classifier thresholds")
	fs.IntVar(&cfg.ClassifyWorkers, "workers", cfg.ClassifyWorkers, "Concurrent crop classifications")
	fs.StringVar(&cfg.LogLevel, "log-level", "warn", "Log level written to stderr")
	dir := fs.String("dir", "", "Classify every image in a directory")

	enc := json.NewEncoder(stdout)
	fail := func(err error) int {
		enc.Encode(errorOutput{Error: err.Error()})
		return 1
	}

	if err := fs.Parse(args); err != nil {
		return fail(err)
	}
	if *dir == "" && fs.NArg() != 1 {
		return fail(errUsage)
	}

	logging.Setup(cfg.LogLevel)

	processor, closeFn, err := buildProcessor(cfg, newDetector)
	if err != nil {
		return fail(err)
	}
	defer closeFn()

	ctx := context.Background()

	if *dir != "" {
		return runDirectory(ctx, processor, *dir, enc)
	}

	file, err := util.LoadImageFile(fs.Arg(0))
	if err != nil {
		return fail(err)
	}
	resp, err := processor.ProcessBytes(ctx, file.Data)
	if err != nil {
		return fail(err)
	}
	if err := enc.Encode(resp); err != nil {
		log.Error().Err(err).Msg("failed to write results")
		return 1
	}
	return 0
}

func runDirectory(ctx context.Context, processor *pipeline.Processor, dir string, enc *json.Encoder) int {
	files, err := util.LoadDirectoryImageFiles(dir)
	if err != nil {
		enc.Encode(errorOutput{Error: err.Error()})
		return 1
	}

	code := 0
	for _, file := range files {
		resp, err := processor.ProcessBytes(ctx, file.Data)
		if err != nil {
			enc.Encode(fileError{Path: file.Path, Error: err.Error()})
			code = 1
			continue
		}
		enc.Encode(fileResults{Path: file.Path, Results: resp.Results})
	}
	log.Info().Int("files", len(files)).Str("dir", dir).Msg("directory processed")
	return code
}

func buildProcessor(cfg *config.Config, newDetector detectorFactory) (*pipeline.Processor, func(), error) {
	clsCfg, err := cfg.ClassifierConfig()
	if err != nil {
		return nil, nil, err
	}
	cls, err := classifier.New(clsCfg)
	if err != nil {
		return nil, nil, err
	}

	detector, err := newDetector(cfg.DetectorConfig())
	if err != nil {
		return nil, nil, err
	}

	processor, err := pipeline.NewProcessor(detector, cls, pipeline.Options{
		CropSize:    image.Point{X: cfg.CropWidth, Y: cfg.CropHeight},
		Workers:     cfg.ClassifyWorkers,
		JPEGQuality: cfg.JPEGQuality,
	}, nil)
	if err != nil {
		detector.Close()
		return nil, nil, err
	}

	return processor, func() { detector.Close() }, nil
}
