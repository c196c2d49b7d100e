// Package config - Process configuration from the environment and an optional
// .env file.
package config

import (
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/nvr-ai/go-trafficlight/classifier"
	"github.com/nvr-ai/go-trafficlight/inference"
	"github.com/rs/zerolog/log"
)

type Config struct {
	// Application
	Version     string
	Environment string
	Port        int
	LogLevel    string

	// Detector
	ModelPath           string
	ORTLibraryPath      string
	ExecutionProvider   string
	InputSize           int
	ConfidenceThreshold float64
	NMSThreshold        float64

	// Classification
	CropWidth            int
	CropHeight           int
	ClassifyWorkers      int
	ClassifierConfigPath string // optional YAML thresholds file
	JPEGQuality          int

	// HTTP
	MaxUploadBytes int64

	// NATS (detections fan-out). Empty URL disables publishing.
	NatsURL            string
	NatsSubject        string
	NatsConnectTimeout time.Duration
	NatsReconnectWait  time.Duration
	NatsMaxReconnects  int
	NatsDrainTimeout   time.Duration

	// Profiling report interval; 0 disables periodic reports.
	ProfileReportInterval time.Duration

	// Graceful Shutdown
	ShutdownTimeout time.Duration
}

func Load() *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("No .env file found, using environment variables and defaults")
	} else {
		log.Info().Msg("Loaded configuration from .env file")
	}

	return &Config{
		Version:     getEnv("VERSION", "1.0.0"),
		Environment: getEnv("ENVIRONMENT", "development"),
		Port:        getEnvInt("PORT", 5000),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		ModelPath:           getEnv("MODEL_PATH", "models/traffic_light_yolo.onnx"),
		ORTLibraryPath:      getEnv("ORT_LIBRARY_PATH", ""),
		ExecutionProvider:   getEnv("EXECUTION_PROVIDER", string(inference.CPUExecutionProvider)),
		InputSize:           getEnvInt("INPUT_SIZE", 640),
		ConfidenceThreshold: getEnvFloat("CONFIDENCE_THRESHOLD", 0.25),
		NMSThreshold:        getEnvFloat("NMS_THRESHOLD", 0.7),

		CropWidth:            getEnvInt("CROP_WIDTH", 120),
		CropHeight:           getEnvInt("CROP_HEIGHT", 320),
		ClassifyWorkers:      getEnvInt("CLASSIFY_WORKERS", runtime.NumCPU()),
		ClassifierConfigPath: getEnv("CLASSIFIER_CONFIG", ""),
		JPEGQuality:          getEnvInt("JPEG_QUALITY", 95),

		MaxUploadBytes: int64(getEnvInt("MAX_UPLOAD_BYTES", 16<<20)),

		NatsURL:            getEnv("NATS_URL", ""),
		NatsSubject:        getEnv("NATS_SUBJECT", "trafficlight.detections"),
		NatsConnectTimeout: getEnvDuration("NATS_CONNECT_TIMEOUT", 10*time.Second),
		NatsReconnectWait:  getEnvDuration("NATS_RECONNECT_WAIT", 2*time.Second),
		NatsMaxReconnects:  getEnvInt("NATS_MAX_RECONNECTS", -1), // -1 = unlimited
		NatsDrainTimeout:   getEnvDuration("NATS_DRAIN_TIMEOUT", 5*time.Second),

		ProfileReportInterval: getEnvDuration("PROFILE_REPORT_INTERVAL", 0),

		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
	}
}

// DetectorConfig maps the detector settings onto an inference.Config.
func (c *Config) DetectorConfig() inference.Config {
	cfg := inference.DefaultConfig()
	cfg.ModelPath = c.ModelPath
	cfg.LibraryPath = c.ORTLibraryPath
	cfg.Provider = inference.Provider(c.ExecutionProvider)
	cfg.InputSize = c.InputSize
	cfg.ConfidenceThreshold = float32(c.ConfidenceThreshold)
	cfg.NMSThreshold = float32(c.NMSThreshold)
	return cfg
}

// ClassifierConfig returns the default thresholds, or the ones in
// ClassifierConfigPath when it is set.
func (c *Config) ClassifierConfig() (classifier.Config, error) {
	if c.ClassifierConfigPath == "" {
		return classifier.DefaultConfig(), nil
	}
	cfg, err := classifier.LoadConfig(c.ClassifierConfigPath)
	if err != nil {
		return classifier.Config{}, err
	}
	return *cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
