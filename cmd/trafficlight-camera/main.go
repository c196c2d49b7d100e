// Command trafficlight-camera classifies traffic lights on a live video
// capture device or a video file, one frame at a time.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/nvr-ai/go-trafficlight/classifier"
	"github.com/nvr-ai/go-trafficlight/config"
	"github.com/nvr-ai/go-trafficlight/inference"
	"github.com/nvr-ai/go-trafficlight/logging"
	"github.com/nvr-ai/go-trafficlight/messaging"
	"github.com/nvr-ai/go-trafficlight/pipeline"
	"github.com/nvr-ai/go-trafficlight/profiler"
	"github.com/rs/zerolog/log"
	"gocv.io/x/gocv"
)

func main() {
	cfg := config.Load()

	source := flag.String("source", "0", "Capture device ID or video file path")
	every := flag.Int("every", 5, "Classify every Nth frame")
	maxFrames := flag.Int("max-frames", 0, "Stop after this many frames (0 runs until interrupted)")
	flag.StringVar(&cfg.ModelPath, "model", cfg.ModelPath, "Path to the YOLO traffic light ONNX model")
	flag.StringVar(&cfg.NatsURL, "nats", cfg.NatsURL, "NATS URL for detection events (empty disables)")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level")
	flag.Parse()

	logging.Setup(cfg.LogLevel)

	clsCfg, err := cfg.ClassifierConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load classifier config")
	}
	cls, err := classifier.New(clsCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create classifier")
	}

	detector, err := inference.NewONNXDetector(cfg.DetectorConfig())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load detector")
	}
	defer detector.Close()

	prof := profiler.NewRuntimeProfiler(profiler.ProfilingOptions{ReportInterval: cfg.ProfileReportInterval})
	if cfg.ProfileReportInterval > 0 {
		prof.Start()
		defer prof.Stop()
	}

	processor, err := pipeline.NewProcessor(detector, cls, pipeline.Options{
		CropSize:    image.Point{X: cfg.CropWidth, Y: cfg.CropHeight},
		Workers:     cfg.ClassifyWorkers,
		JPEGQuality: cfg.JPEGQuality,
	}, prof)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create processor")
	}

	var publisher messaging.Publisher = messaging.NopPublisher{}
	if cfg.NatsURL != "" {
		svc, err := messaging.NewService(cfg)
		if err != nil {
			log.Error().Err(err).Msg("NATS unavailable, detection events disabled")
		} else {
			publisher = svc
			defer svc.Shutdown(context.Background())
		}
	}

	capture, err := openCapture(*source)
	if err != nil {
		log.Fatal().Err(err).Str("source", *source).Msg("Failed to open capture")
	}
	defer capture.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := logging.WithComponent("camera").With().Str("source", *source).Logger()
	logger.Info().Int("every", *every).Msg("start reading capture")

	img := gocv.NewMat()
	defer img.Close()

	meter := newFPSMeter(time.Now())
	for frame := 0; *maxFrames == 0 || frame < *maxFrames; frame++ {
		if ctx.Err() != nil {
			break
		}
		if ok := capture.Read(&img); !ok {
			logger.Info().Int("frame", frame).Msg("capture ended")
			break
		}
		if img.Empty() {
			continue
		}
		meter.tick(time.Now())

		if !shouldProcess(frame, *every) {
			continue
		}

		resp, err := processor.ProcessMat(ctx, img)
		if err != nil {
			logger.Error().Err(err).Int("frame", frame).Msg("frame failed")
			continue
		}

		labels := resp.Labels()
		logger.Info().
			Int("frame", frame).
			Float64("fps", meter.fps).
			Interface("labels", labels).
			Msg("frame classified")

		event := messaging.NewDetectionEvent(fmt.Sprintf("%s#%d", *source, frame), labels, time.Now())
		if err := publisher.PublishDetection(event); err != nil {
			logger.Warn().Err(err).Msg("failed to publish detection event")
		}
	}
}

// openCapture opens a numeric device ID as a camera, anything else as a file.
func openCapture(source string) (*gocv.VideoCapture, error) {
	if id, err := strconv.Atoi(source); err == nil {
		return gocv.OpenVideoCapture(id)
	}
	if _, err := os.Stat(source); err != nil {
		return nil, err
	}
	return gocv.VideoCaptureFile(source)
}

func shouldProcess(frame, every int) bool {
	if every <= 1 {
		return true
	}
	return frame%every == 0
}

// fpsMeter recomputes the frame rate about once a second.
type fpsMeter struct {
	fps    float64
	frames int
	last   time.Time
}

func newFPSMeter(now time.Time) *fpsMeter {
	return &fpsMeter{last: now}
}

func (m *fpsMeter) tick(now time.Time) {
	m.frames++
	elapsed := now.Sub(m.last).Seconds()
	if elapsed >= 1.0 {
		m.fps = float64(m.frames) / elapsed
		m.frames = 0
		m.last = now
	}
}
