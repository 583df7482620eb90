package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hookrelay-systems/hookrelay/internal/models"
)

// InMemoryRepository is a mutex-guarded EventRepository for development mode
// and tests. Events are copied on insert so callers cannot mutate stored
// state afterwards.
type InMemoryRepository struct {
	mu     sync.RWMutex
	events []models.WebhookEvent
	last   time.Time
}

// NewInMemoryRepository creates an empty in-memory store.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{}
}

func (r *InMemoryRepository) Insert(_ context.Context, event *models.WebhookEvent) (*models.WebhookEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := copyEvent(event)
	stored.ID = uuid.New().String()

	// Timestamps are non-decreasing per store.
	now := time.Now().UTC()
	if now.Before(r.last) {
		now = r.last
	}
	r.last = now
	stored.CreatedAt = now

	r.events = append(r.events, stored)
	result := copyEvent(&stored)
	return &result, nil
}

func (r *InMemoryRepository) CountByHost(_ context.Context, host string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var count int64
	for i := range r.events {
		if r.events[i].Host == host {
			count++
		}
	}
	return count, nil
}

func (r *InMemoryRepository) CountsByHost(_ context.Context) ([]models.HostCount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	byHost := make(map[string]int64)
	for i := range r.events {
		byHost[r.events[i].Host]++
	}

	counts := make([]models.HostCount, 0, len(byHost))
	for host, count := range byHost {
		counts = append(counts, models.HostCount{Host: host, Count: count})
	}
	sort.Slice(counts, func(i, j int) bool { return counts[i].Host < counts[j].Host })

	return counts, nil
}

func (r *InMemoryRepository) DeleteByHost(_ context.Context, host string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.events[:0]
	var removed int64
	for i := range r.events {
		if r.events[i].Host == host {
			removed++
			continue
		}
		kept = append(kept, r.events[i])
	}
	r.events = kept

	return removed, nil
}

func (r *InMemoryRepository) DeleteAll(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := int64(len(r.events))
	r.events = nil
	return removed, nil
}

func (r *InMemoryRepository) Ping(_ context.Context) error { return nil }

func (r *InMemoryRepository) Close() {}

// copyEvent clones the event including its backing storage, so mutating the
// caller's body, headers or attachments after insert cannot reach the store.
func copyEvent(event *models.WebhookEvent) models.WebhookEvent {
	stored := *event

	if event.Body != nil {
		stored.Body = append([]byte(nil), event.Body...)
	}
	if event.Headers != nil {
		stored.Headers = make(map[string]string, len(event.Headers))
		for k, v := range event.Headers {
			stored.Headers[k] = v
		}
	}
	if event.Attachments != nil {
		stored.Attachments = make([]models.Attachment, len(event.Attachments))
		for i, a := range event.Attachments {
			a.Data = append([]byte(nil), a.Data...)
			stored.Attachments[i] = a
		}
	}

	return stored
}
