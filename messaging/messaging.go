// Package messaging - Publishes classification results to NATS.
package messaging

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nvr-ai/go-trafficlight/classifier"
	"github.com/nvr-ai/go-trafficlight/config"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// DetectionEvent summarizes one processed image.
type DetectionEvent struct {
	RequestID string             `json:"request_id"`
	Labels    []classifier.Label `json:"labels"`
	Count     int                `json:"count"`
	Timestamp time.Time          `json:"timestamp"`
}

// NewDetectionEvent builds an event for the labels produced by one request.
func NewDetectionEvent(requestID string, labels []classifier.Label, at time.Time) DetectionEvent {
	if labels == nil {
		labels = []classifier.Label{}
	}
	return DetectionEvent{
		RequestID: requestID,
		Labels:    labels,
		Count:     len(labels),
		Timestamp: at.UTC(),
	}
}

// Publisher sends detection events somewhere.
type Publisher interface {
	PublishDetection(event DetectionEvent) error
	IsConnected() bool
	Shutdown(ctx context.Context) error
}

// NopPublisher drops every event. It is used when NATS is not configured.
type NopPublisher struct{}

func (NopPublisher) PublishDetection(DetectionEvent) error { return nil }
func (NopPublisher) IsConnected() bool                     { return false }
func (NopPublisher) Shutdown(context.Context) error        { return nil }

// Service publishes events as JSON on a NATS subject.
type Service struct {
	conn    *nats.Conn
	subject string
}

// NewService connects to cfg.NatsURL with reconnect handling.
func NewService(cfg *config.Config) (*Service, error) {
	opts := []nats.Option{
		nats.Name("trafficlight"),
		nats.Timeout(cfg.NatsConnectTimeout),
		nats.ReconnectWait(cfg.NatsReconnectWait),
		nats.MaxReconnects(cfg.NatsMaxReconnects),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn().Err(err).Msg("NATS disconnected")
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Info().Str("url", c.ConnectedUrl()).Msg("NATS reconnected")
		}),
	}

	conn, err := nats.Connect(cfg.NatsURL, opts...)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to connect to NATS at %s", cfg.NatsURL)
	}

	log.Info().Str("url", cfg.NatsURL).Str("subject", cfg.NatsSubject).Msg("NATS connection established")

	return &Service{
		conn:    conn,
		subject: cfg.NatsSubject,
	}, nil
}

// Publish marshals data to JSON and publishes it on subject.
func (s *Service) Publish(subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return errors.Wrap(err, "failed to marshal payload")
	}

	return s.conn.Publish(subject, payload)
}

// PublishDetection publishes an event on the configured subject.
func (s *Service) PublishDetection(event DetectionEvent) error {
	return s.Publish(s.subject, event)
}

// IsConnected reports whether the NATS connection is up.
func (s *Service) IsConnected() bool {
	return s.conn != nil && s.conn.IsConnected()
}

// Shutdown drains the connection, closing it outright if the drain fails or
// ctx expires first.
func (s *Service) Shutdown(ctx context.Context) error {
	if s.conn == nil {
		return nil
	}

	if err := s.conn.Drain(); err != nil {
		log.Warn().Err(err).Msg("Failed to drain NATS connection gracefully, closing immediately")
		s.conn.Close()
		return nil
	}

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for !s.conn.IsClosed() {
		select {
		case <-ctx.Done():
			s.conn.Close()
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}
