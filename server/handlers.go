package server

import (
	"io"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nvr-ai/go-trafficlight/logging"
	"github.com/nvr-ai/go-trafficlight/messaging"
	"github.com/nvr-ai/go-trafficlight/pipeline"
	"github.com/pkg/errors"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	NATS    bool   `json:"nats_connected"`
	// Model reports whether the configured model file is present on disk.
	Model bool `json:"model_available"`
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:  "healthy",
		Version: s.config.Version,
		NATS:    s.publisher.IsConnected(),
		Model:   modelAvailable(s.config.ModelPath),
	})
}

func modelAvailable(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func (s *Server) stats(c *gin.Context) {
	c.JSON(http.StatusOK, s.profiler.Snapshot())
}

// detect classifies every traffic light in the uploaded "image" field.
func (s *Server) detect(c *gin.Context) {
	logger := logging.WithRequest(s.logger, c.GetString(requestIDKey))

	limit := s.config.MaxUploadBytes
	if limit > 0 {
		if c.Request.ContentLength > limit {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Image too large"})
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
	}

	header, err := c.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Image too large"})
			return
		}
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "No image provided"})
		return
	}

	file, err := header.Open()
	if err != nil {
		logger.Error().Err(err).Msg("failed to open upload")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to process image"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		logger.Error().Err(err).Msg("failed to read upload")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to process image"})
		return
	}

	resp, err := s.processor.ProcessBytes(c.Request.Context(), data)
	if err != nil {
		if errors.Is(err, pipeline.ErrInvalidImage) {
			logger.Warn().Err(err).Str("filename", header.Filename).Msg("rejected upload")
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid image"})
			return
		}
		logger.Error().Err(err).Msg("failed to process image")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to process image"})
		return
	}

	event := messaging.NewDetectionEvent(c.GetString(requestIDKey), resp.Labels(), time.Now())
	if err := s.publisher.PublishDetection(event); err != nil {
		logger.Warn().Err(err).Msg("failed to publish detection event")
	}

	logger.Debug().Int("results", len(resp.Results)).Msg("image processed")
	c.JSON(http.StatusOK, resp)
}
