package capstats

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	return NewClientFromRedis(rdb)
}

func TestRecordCaptureAndGetUsage(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, c.RecordCapture(ctx, "shop1.example", 1, "203.0.113.7"))
	require.NoError(t, c.RecordCapture(ctx, "shop1.example", 2, "203.0.113.8"))

	usage, err := c.GetUsage(ctx, "shop1.example")
	require.NoError(t, err)

	assert.Equal(t, int64(3), usage.TotalEvents)
	assert.Equal(t, int64(3), usage.EventsLast24h)
	assert.Equal(t, "203.0.113.8", usage.LastSourceIP)
	require.NotNil(t, usage.LastCapturedAt)
}

func TestGetUsage_UnknownHostIsZero(t *testing.T) {
	c := newTestClient(t)

	usage, err := c.GetUsage(context.Background(), "nobody.example")
	require.NoError(t, err)

	assert.Zero(t, usage.TotalEvents)
	assert.Zero(t, usage.EventsLast24h)
	assert.Nil(t, usage.LastCapturedAt)
	assert.Empty(t, usage.LastSourceIP)
}

func TestRecordCapture_HostsAreIsolated(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, c.RecordCapture(ctx, "a.example", 5, "203.0.113.1"))
	require.NoError(t, c.RecordCapture(ctx, "b.example", 1, "203.0.113.2"))

	usageA, err := c.GetUsage(ctx, "a.example")
	require.NoError(t, err)
	usageB, err := c.GetUsage(ctx, "b.example")
	require.NoError(t, err)

	assert.Equal(t, int64(5), usageA.TotalEvents)
	assert.Equal(t, int64(1), usageB.TotalEvents)
}

func TestNewClient_InvalidURL(t *testing.T) {
	_, err := NewClient("not-a-url")
	assert.Error(t, err)
}
