// Command trafficlight-server serves traffic light detection over HTTP.
package main

import (
	"context"
	"flag"
	"image"
	"os"
	"os/signal"
	"syscall"

	"github.com/nvr-ai/go-trafficlight/classifier"
	"github.com/nvr-ai/go-trafficlight/config"
	"github.com/nvr-ai/go-trafficlight/inference"
	"github.com/nvr-ai/go-trafficlight/logging"
	"github.com/nvr-ai/go-trafficlight/messaging"
	"github.com/nvr-ai/go-trafficlight/pipeline"
	"github.com/nvr-ai/go-trafficlight/profiler"
	"github.com/nvr-ai/go-trafficlight/server"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load configuration
	cfg := config.Load()

	flag.IntVar(&cfg.Port, "port", cfg.Port, "HTTP port")
	flag.StringVar(&cfg.ModelPath, "model", cfg.ModelPath, "Path to the YOLO traffic light ONNX model")
	flag.StringVar(&cfg.ORTLibraryPath, "ort-lib", cfg.ORTLibraryPath, "Path to the onnxruntime shared library")
	flag.StringVar(&cfg.ClassifierConfigPath, "classifier-config", cfg.ClassifierConfigPath, "Optional YAML classifier thresholds")
	flag.StringVar(&cfg.NatsURL, "nats", cfg.NatsURL, "NATS URL for detection events (empty disables)")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level")
	flag.Parse()

	// Setup structured logging
	logging.Setup(cfg.LogLevel)

	log.Info().
		Str("version", cfg.Version).
		Str("environment", cfg.Environment).
		Int("port", cfg.Port).
		Str("model", cfg.ModelPath).
		Bool("nats_enabled", cfg.NatsURL != "").
		Msg("Starting traffic light server")

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
			// Detection still works without the event feed.
			log.Error().Err(err).Msg("NATS unavailable, detection events disabled")
		} else {
			publisher = svc
		}
	}

	srv := server.NewServer(cfg, processor, publisher, prof)

	// Start server in goroutine
	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutdown signal received")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	} else {
		log.Info().Msg("Server shutdown complete")
	}

	drainCtx, drainCancel := context.WithTimeout(context.Background(), cfg.NatsDrainTimeout)
	defer drainCancel()
	if err := publisher.Shutdown(drainCtx); err != nil {
		log.Warn().Err(err).Msg("NATS drain incomplete")
	}
}
