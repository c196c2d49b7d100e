// Package pipeline - Detect, crop, classify and encode traffic lights in an
// image.
package pipeline

import (
	"context"
	"image"
	"runtime"

	"github.com/nvr-ai/go-trafficlight/classifier"
	"github.com/nvr-ai/go-trafficlight/images"
	"github.com/nvr-ai/go-trafficlight/inference"
	"github.com/nvr-ai/go-trafficlight/logging"
	"github.com/nvr-ai/go-trafficlight/profiler"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"gocv.io/x/gocv"
	"golang.org/x/sync/errgroup"
)

// ErrInvalidImage is returned when the input bytes are not a decodable image.
var ErrInvalidImage = errors.New("invalid image")

// Result is one classified traffic light.
type Result struct {
	// Image is the resized crop as a JPEG data URI.
	Image string `json:"image"`
	// Label is the lamp color.
	Label classifier.Label `json:"label"`
}

// Response is the result set for one image, in detection order.
type Response struct {
	Results []Result `json:"results"`
}

// Labels returns the label of every result.
func (r Response) Labels() []classifier.Label {
	labels := make([]classifier.Label, len(r.Results))
	for i, res := range r.Results {
		labels[i] = res.Label
	}
	return labels
}

// Options tune a Processor.
type Options struct {
	// CropSize is the classification crop size (width X, height Y).
	CropSize image.Point
	// Workers bounds concurrent crop classification.
	Workers int
	// JPEGQuality is used to encode crops.
	JPEGQuality int
}

// DefaultOptions returns 120x320 crops, one worker per CPU and OpenCV's
// default JPEG quality.
func DefaultOptions() Options {
	return Options{
		CropSize:    image.Point{X: 120, Y: 320},
		Workers:     runtime.NumCPU(),
		JPEGQuality: images.DefaultJPEGQuality,
	}
}

// Processor runs the full detection and classification pipeline. It is safe
// for concurrent use when its Detector is.
type Processor struct {
	detector   inference.Detector
	classifier *classifier.Classifier
	opts       Options
	profiler   *profiler.RuntimeProfiler
	logger     zerolog.Logger
}

// NewProcessor wires a detector and classifier together.
//
// Arguments:
//   - detector: Finds traffic lights in a frame.
//   - cls: Labels each crop.
//   - opts: Crop size, worker count and JPEG quality.
//   - prof: Optional profiler for operation timings, or nil.
//
// Returns:
//   - *Processor: The processor.
//   - error: An error if a dependency is missing or an option is invalid.
func NewProcessor(
	detector inference.Detector,
	cls *classifier.Classifier,
	opts Options,
	prof *profiler.RuntimeProfiler,
) (*Processor, error) {
	if detector == nil {
		return nil, errors.New("detector is required")
	}
	if cls == nil {
		return nil, errors.New("classifier is required")
	}
	if opts.CropSize.X <= 0 || opts.CropSize.Y <= 0 {
		return nil, errors.Errorf("crop size must be positive, got %v", opts.CropSize)
	}
	if opts.JPEGQuality < 1 || opts.JPEGQuality > 100 {
		return nil, errors.Errorf("jpeg quality must be in [1, 100], got %d", opts.JPEGQuality)
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}

	return &Processor{
		detector:   detector,
		classifier: cls,
		opts:       opts,
		profiler:   prof,
		logger:     logging.WithComponent("pipeline"),
	}, nil
}

// ProcessBytes decodes an encoded image and processes it.
//
// Returns:
//   - Response: The classified crops.
//   - error: ErrInvalidImage for undecodable input, or a detection error.
func (p *Processor) ProcessBytes(ctx context.Context, data []byte) (Response, error) {
	done := p.track("decode")
	img, err := images.Decode(data)
	done()
	if err != nil {
		return Response{}, errors.Wrap(ErrInvalidImage, err.Error())
	}
	defer img.Close()

	return p.ProcessMat(ctx, img)
}

// ProcessMat detects traffic lights in a BGR frame and classifies each one.
// Crops that fail validation or encoding are logged and left out; the rest
// keep detection order. The frame is not modified.
func (p *Processor) ProcessMat(ctx context.Context, img gocv.Mat) (Response, error) {
	if img.Empty() {
		return Response{}, ErrInvalidImage
	}

	done := p.track("detect")
	boxes, err := p.detector.Detect(ctx, img)
	done()
	if err != nil {
		return Response{}, errors.Wrap(err, "detection failed")
	}

	crops := inference.ExtractCrops(img, boxes, p.opts.CropSize)
	defer inference.CloseCrops(crops)
	p.count("detections", int64(len(boxes)))

	results := make([]Result, len(crops))
	ok := make([]bool, len(crops))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Workers)
	for i := range crops {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := p.classifyCrop(crops[i])
			if err != nil {
				p.logger.Warn().Err(err).Int("crop", i).Str("box", crops[i].Box.String()).Msg("skipping crop")
				return nil
			}
			results[i], ok[i] = res, true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Response{}, err
	}

	out := Response{Results: make([]Result, 0, len(crops))}
	for i, res := range results {
		if ok[i] {
			out.Results = append(out.Results, res)
			p.count("label."+res.Label.String(), 1)
		}
	}
	return out, nil
}

func (p *Processor) classifyCrop(crop inference.Crop) (Result, error) {
	if err := classifier.ValidateCrop(crop.Mat); err != nil {
		return Result{}, err
	}

	done := p.track("classify")
	label := p.classifier.Classify(crop.Mat)
	done()

	done = p.track("encode")
	encoded, err := images.EncodeJPEG(crop.Mat, p.opts.JPEGQuality)
	done()
	if err != nil {
		return Result{}, err
	}

	return Result{Image: encoded.DataURI(), Label: label}, nil
}

func (p *Processor) track(op string) func() {
	if p.profiler == nil {
		return func() {}
	}
	return p.profiler.StartOperation(op)
}

func (p *Processor) count(name string, delta int64) {
	if p.profiler != nil {
		p.profiler.Add(name, delta)
	}
}
