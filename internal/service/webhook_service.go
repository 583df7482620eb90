// Package service orchestrates capture, aggregation and bulk deletion over
// the event store.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/hookrelay-systems/hookrelay/internal/capstats"
	"github.com/hookrelay-systems/hookrelay/internal/logging"
	"github.com/hookrelay-systems/hookrelay/internal/metrics"
	"github.com/hookrelay-systems/hookrelay/internal/models"
	"github.com/hookrelay-systems/hookrelay/internal/repository"
)

// ErrMissingHost means the transport layer failed to resolve a tenant host.
var ErrMissingHost = errors.New("tenant host is required")

// CaptureRequest carries everything the transport layer extracted from an
// inbound call. Path must already be normalized by the route resolver.
type CaptureRequest struct {
	Host        string
	Path        string
	Body        []byte
	Headers     map[string]string
	SourceIP    string
	Attachments []models.Attachment
}

// WebhookService implements the ingestion and aggregation operations. It is
// stateless; the event store is the only shared mutable resource.
type WebhookService struct {
	repo   repository.EventRepository
	stats  *capstats.Client
	logger *logging.Logger
}

// NewWebhookService creates the service. stats may be nil when usage
// tracking is disabled.
func NewWebhookService(repo repository.EventRepository, stats *capstats.Client, logger *logging.Logger) *WebhookService {
	if logger == nil {
		logger = logging.Default()
	}
	return &WebhookService{repo: repo, stats: stats, logger: logger}
}

// Ingest persists one webhook event. On success exactly one new event is
// durably visible; on failure nothing is stored.
func (s *WebhookService) Ingest(ctx context.Context, req CaptureRequest) (*models.WebhookEvent, error) {
	if req.Host == "" {
		return nil, ErrMissingHost
	}

	path := req.Path
	if path == "" {
		path = "/"
	}

	event := &models.WebhookEvent{
		Host:        req.Host,
		Path:        path,
		Body:        req.Body,
		Headers:     req.Headers,
		Attachments: req.Attachments,
		SourceIP:    req.SourceIP,
	}

	stored, err := s.repo.Insert(ctx, event)
	if err != nil {
		metrics.CapturesTotal.WithLabelValues("error").Inc()
		metrics.StorageErrors.Inc()
		return nil, fmt.Errorf("ingest webhook: %w", err)
	}

	metrics.CapturesTotal.WithLabelValues("success").Inc()
	metrics.CaptureBytesTotal.Add(float64(len(req.Body)))

	if s.stats != nil {
		if err := s.stats.RecordCapture(ctx, stored.Host, 1, stored.SourceIP); err != nil {
			// Usage stats are advisory; a stats failure never fails a capture.
			s.logger.DebugContext(ctx, "failed to record capture stats", logging.Error(err))
		}
	}

	s.logger.InfoContext(ctx, "webhook captured",
		logging.EventID(stored.ID),
		logging.Host(stored.Host),
		logging.Path(stored.Path),
	)

	return stored, nil
}

// CountForHost returns the live event count for one tenant host.
func (s *WebhookService) CountForHost(ctx context.Context, host string) (int64, error) {
	if host == "" {
		return 0, ErrMissingHost
	}
	return s.repo.CountByHost(ctx, host)
}

// CountsPerHost returns grouped counts for every host with at least one
// event, in a deterministic order.
func (s *WebhookService) CountsPerHost(ctx context.Context) ([]models.HostCount, error) {
	return s.repo.CountsByHost(ctx)
}

// DeleteForHost removes all events for one tenant host.
func (s *WebhookService) DeleteForHost(ctx context.Context, host string) (models.DeleteResult, error) {
	if host == "" {
		return models.DeleteResult{}, ErrMissingHost
	}

	removed, err := s.repo.DeleteByHost(ctx, host)
	if err != nil {
		return models.DeleteResult{}, fmt.Errorf("delete webhooks for host: %w", err)
	}

	metrics.DeletesTotal.WithLabelValues("host").Inc()
	s.logger.InfoContext(ctx, "webhooks deleted", logging.Host(host), "count", removed)

	return models.DeleteResult{Count: removed}, nil
}

// DeleteAll removes every event across all tenants.
func (s *WebhookService) DeleteAll(ctx context.Context) (models.DeleteResult, error) {
	removed, err := s.repo.DeleteAll(ctx)
	if err != nil {
		return models.DeleteResult{}, fmt.Errorf("delete all webhooks: %w", err)
	}

	metrics.DeletesTotal.WithLabelValues("all").Inc()
	s.logger.InfoContext(ctx, "all webhooks deleted", "count", removed)

	return models.DeleteResult{Count: removed}, nil
}

// Ready reports whether the event store is reachable.
func (s *WebhookService) Ready(ctx context.Context) error {
	return s.repo.Ping(ctx)
}
