// Package repository is the durable event store for captured webhooks.
package repository

import (
	"context"
	"errors"

	"github.com/hookrelay-systems/hookrelay/internal/models"
)

// ErrStorageFailure indicates the event store could not accept a write or
// serve a read. Every repository error wraps it so callers can map storage
// problems to a service-unavailable response.
var ErrStorageFailure = errors.New("event store unavailable")

// EventRepository is the storage contract for webhook events. Inserts assign
// the identifier and creation timestamp; events are never updated, only
// created and bulk-deleted.
type EventRepository interface {
	// Insert stores the event atomically and returns it with the assigned
	// identifier and timestamp.
	Insert(ctx context.Context, event *models.WebhookEvent) (*models.WebhookEvent, error)

	// CountByHost returns the live number of events for the exact host,
	// zero if none.
	CountByHost(ctx context.Context, host string) (int64, error)

	// CountsByHost returns one entry per host with at least one event,
	// ordered by host ascending.
	CountsByHost(ctx context.Context) ([]models.HostCount, error)

	// DeleteByHost removes all events for the host and reports how many.
	DeleteByHost(ctx context.Context, host string) (int64, error)

	// DeleteAll removes every event across all hosts and reports how many.
	DeleteAll(ctx context.Context) (int64, error)

	// Ping verifies the store is reachable.
	Ping(ctx context.Context) error

	// Close releases the underlying resources.
	Close()
}
