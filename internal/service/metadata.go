package service

import (
	"context"

	"github.com/hookrelay-systems/hookrelay/internal/capstats"
	"github.com/hookrelay-systems/hookrelay/internal/logging"
	"github.com/hookrelay-systems/hookrelay/internal/models"
	"github.com/hookrelay-systems/hookrelay/internal/routing"
)

// MetadataService builds the per-tenant store descriptor from process
// configuration, plus live usage when a stats client is configured.
type MetadataService struct {
	reservedPath  string
	maxBodyBytes  int64
	retentionDays int
	stats         *capstats.Client
	logger        *logging.Logger
}

// NewMetadataService creates the service. stats may be nil.
func NewMetadataService(reservedPath string, maxBodyBytes int64, retentionDays int, stats *capstats.Client, logger *logging.Logger) *MetadataService {
	if logger == nil {
		logger = logging.Default()
	}
	return &MetadataService{
		reservedPath:  routing.Normalize(reservedPath),
		maxBodyBytes:  maxBodyBytes,
		retentionDays: retentionDays,
		stats:         stats,
		logger:        logger,
	}
}

// StoreMetadata returns the storage descriptor for one tenant host.
func (s *MetadataService) StoreMetadata(ctx context.Context, host string) models.StoreMetadata {
	md := models.StoreMetadata{
		Host:          host,
		ReservedPath:  s.reservedPath,
		MaxBodyBytes:  s.maxBodyBytes,
		RetentionDays: s.retentionDays,
	}

	if s.stats != nil {
		usage, err := s.stats.GetUsage(ctx, host)
		if err != nil {
			s.logger.WarnContext(ctx, "failed to read tenant usage", logging.Host(host), logging.Error(err))
		} else {
			md.Usage = usage
		}
	}

	return md
}
