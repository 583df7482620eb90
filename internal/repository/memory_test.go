package repository

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hookrelay-systems/hookrelay/internal/models"
)

func TestInMemory_InsertAssignsIdentity(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	stored, err := repo.Insert(ctx, &models.WebhookEvent{
		Host: "shop1.example",
		Path: "/order",
		Body: []byte(`{"n":1}`),
	})
	require.NoError(t, err)

	assert.NotEmpty(t, stored.ID)
	assert.False(t, stored.CreatedAt.IsZero())
	assert.Equal(t, "shop1.example", stored.Host)
	assert.Equal(t, "/order", stored.Path)

	other, err := repo.Insert(ctx, &models.WebhookEvent{Host: "shop1.example", Path: "/order"})
	require.NoError(t, err)
	assert.NotEqual(t, stored.ID, other.ID)
	assert.False(t, other.CreatedAt.Before(stored.CreatedAt))
}

func TestInMemory_CountByHost(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	count, err := repo.CountByHost(ctx, "shop1.example")
	require.NoError(t, err)
	assert.Zero(t, count)

	for _, path := range []string{"/order", "/refund", "/order"} {
		_, err := repo.Insert(ctx, &models.WebhookEvent{Host: "shop1.example", Path: path})
		require.NoError(t, err)
	}
	_, err = repo.Insert(ctx, &models.WebhookEvent{Host: "shop2.example", Path: "/ping"})
	require.NoError(t, err)

	count, err = repo.CountByHost(ctx, "shop1.example")
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestInMemory_CountsByHost_OrderedAndExact(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	ingests := map[string]int{"b.example": 2, "a.example": 3, "c.example": 1}
	total := 0
	for host, n := range ingests {
		for i := 0; i < n; i++ {
			_, err := repo.Insert(ctx, &models.WebhookEvent{Host: host, Path: "/"})
			require.NoError(t, err)
			total++
		}
	}

	counts, err := repo.CountsByHost(ctx)
	require.NoError(t, err)
	require.Len(t, counts, 3)

	assert.Equal(t, "a.example", counts[0].Host)
	assert.Equal(t, "b.example", counts[1].Host)
	assert.Equal(t, "c.example", counts[2].Host)

	var sum int64
	for _, hc := range counts {
		assert.Equal(t, int64(ingests[hc.Host]), hc.Count)
		sum += hc.Count
	}
	assert.Equal(t, int64(total), sum)

	// Deterministic across repeated calls on unchanged data.
	again, err := repo.CountsByHost(ctx)
	require.NoError(t, err)
	assert.Equal(t, counts, again)
}

func TestInMemory_DeleteByHost_ScopedToHost(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		_, err := repo.Insert(ctx, &models.WebhookEvent{Host: "shop1.example", Path: "/"})
		require.NoError(t, err)
	}
	_, err := repo.Insert(ctx, &models.WebhookEvent{Host: "shop2.example", Path: "/"})
	require.NoError(t, err)

	removed, err := repo.DeleteByHost(ctx, "shop1.example")
	require.NoError(t, err)
	assert.Equal(t, int64(4), removed)

	count, err := repo.CountByHost(ctx, "shop1.example")
	require.NoError(t, err)
	assert.Zero(t, count)

	count, err = repo.CountByHost(ctx, "shop2.example")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestInMemory_DeleteAll(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	for _, host := range []string{"a.example", "b.example", "b.example"} {
		_, err := repo.Insert(ctx, &models.WebhookEvent{Host: host, Path: "/"})
		require.NoError(t, err)
	}

	removed, err := repo.DeleteAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), removed)

	counts, err := repo.CountsByHost(ctx)
	require.NoError(t, err)
	assert.Empty(t, counts)
}

func TestInMemory_ConcurrentInserts(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	const writers = 100
	var wg sync.WaitGroup
	ids := make([]string, writers)

	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			stored, err := repo.Insert(ctx, &models.WebhookEvent{Host: "shop1.example", Path: "/order"})
			if err != nil {
				t.Error(err)
				return
			}
			ids[i] = stored.ID
		}(i)
	}
	wg.Wait()

	count, err := repo.CountByHost(ctx, "shop1.example")
	require.NoError(t, err)
	assert.Equal(t, int64(writers), count)

	seen := make(map[string]bool, writers)
	for _, id := range ids {
		require.NotEmpty(t, id)
		assert.False(t, seen[id], "duplicate event id %s", id)
		seen[id] = true
	}
}

func TestInMemory_InsertCopiesEvent(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	in := &models.WebhookEvent{Host: "shop1.example", Path: "/order"}
	stored, err := repo.Insert(ctx, in)
	require.NoError(t, err)

	// Mutating the input after insert must not change what was stored.
	in.Host = "evil.example"

	count, err := repo.CountByHost(ctx, "shop1.example")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.Equal(t, "shop1.example", stored.Host)
}

func TestInMemory_InsertCopiesBackingStorage(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	in := &models.WebhookEvent{
		Host:    "shop1.example",
		Path:    "/order",
		Body:    []byte(`{"order":42}`),
		Headers: map[string]string{"Content-Type": "application/json"},
		Attachments: []models.Attachment{
			{Filename: "invoice.pdf", Data: []byte("%PDF-fake")},
		},
	}
	stored, err := repo.Insert(ctx, in)
	require.NoError(t, err)

	// Mutating the input's slices and map after insert must not reach the
	// stored event, and mutating the returned event must not either.
	in.Body[0] = 'X'
	in.Headers["Content-Type"] = "text/plain"
	in.Attachments[0].Data[0] = 'X'
	stored.Body[1] = 'Y'

	repo.mu.RLock()
	kept := repo.events[0]
	repo.mu.RUnlock()

	assert.Equal(t, []byte(`{"order":42}`), kept.Body)
	assert.Equal(t, "application/json", kept.Headers["Content-Type"])
	assert.Equal(t, []byte("%PDF-fake"), kept.Attachments[0].Data)
	assert.Equal(t, "application/json", stored.Headers["Content-Type"])
}
