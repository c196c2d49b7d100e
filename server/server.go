// Package server - HTTP API for traffic light detection.
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nvr-ai/go-trafficlight/config"
	"github.com/nvr-ai/go-trafficlight/logging"
	"github.com/nvr-ai/go-trafficlight/messaging"
	"github.com/nvr-ai/go-trafficlight/pipeline"
	"github.com/nvr-ai/go-trafficlight/profiler"
	"github.com/rs/zerolog"
)

// ImageProcessor turns encoded image bytes into classified crops.
type ImageProcessor interface {
	ProcessBytes(ctx context.Context, data []byte) (pipeline.Response, error)
}

// Server serves the detection API over HTTP.
type Server struct {
	config    *config.Config
	router    *gin.Engine
	server    *http.Server
	processor ImageProcessor
	publisher messaging.Publisher
	profiler  *profiler.RuntimeProfiler
	logger    zerolog.Logger
}

// NewServer builds the router. A nil publisher disables event publishing and a
// nil profiler leaves /stats with runtime figures only.
func NewServer(
	cfg *config.Config,
	processor ImageProcessor,
	publisher messaging.Publisher,
	prof *profiler.RuntimeProfiler,
) *Server {
	gin.SetMode(gin.ReleaseMode)

	if publisher == nil {
		publisher = messaging.NopPublisher{}
	}
	if prof == nil {
		prof = profiler.NewRuntimeProfiler(profiler.ProfilingOptions{})
	}

	s := &Server{
		config:    cfg,
		router:    gin.New(),
		processor: processor,
		publisher: publisher,
		profiler:  prof,
		logger:    logging.WithComponent("server"),
	}
	s.setupMiddleware()
	s.setupRoutes()

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: s.router,
	}
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until Shutdown. It returns nil after a clean shutdown.
func (s *Server) Start() error {
	s.logger.Info().Int("port", s.config.Port).Msg("Starting traffic light API")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("Stopping traffic light API")
	return s.server.Shutdown(ctx)
}
