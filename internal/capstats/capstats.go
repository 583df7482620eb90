// Package capstats provides Redis-backed per-tenant capture statistics.
//
// Multiple relay instances can write concurrently; stats feed the
// store-metadata endpoint so tenants can see their own usage.
//
// Redis key structure:
//
//	capture:stats:{host}              - hash with current stats
//	capture:hourly:{host}:{YYYYMMDDHH} - event count per hour (expires 48h)
package capstats

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hookrelay-systems/hookrelay/internal/models"
)

// Client records and retrieves per-tenant capture statistics.
type Client struct {
	redis *redis.Client
}

// NewClient connects to Redis and verifies the connection.
func NewClient(redisURL string) (*Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return &Client{redis: client}, nil
}

// NewClientFromRedis wraps an existing Redis connection.
func NewClientFromRedis(client *redis.Client) *Client {
	return &Client{redis: client}
}

// RecordCapture records that events were captured for a host. Designed to be
// called on every capture; the pipeline keeps it to one round trip.
func (c *Client) RecordCapture(ctx context.Context, host string, eventCount int64, sourceIP string) error {
	now := time.Now()
	hourKey := now.Format("2006010215")

	pipe := c.redis.Pipeline()

	statsKey := fmt.Sprintf("capture:stats:%s", host)
	pipe.HSet(ctx, statsKey, map[string]interface{}{
		"last_captured_at": strconv.FormatInt(now.Unix(), 10),
		"last_source_ip":   sourceIP,
	})
	pipe.HIncrBy(ctx, statsKey, "total_events", eventCount)

	hourlyKey := fmt.Sprintf("capture:hourly:%s:%s", host, hourKey)
	pipe.IncrBy(ctx, hourlyKey, eventCount)
	pipe.Expire(ctx, hourlyKey, 48*time.Hour)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record capture: %w", err)
	}

	return nil
}

// GetUsage returns the current usage view for a host. A host with no
// recorded captures returns a zero-valued usage, not an error.
func (c *Client) GetUsage(ctx context.Context, host string) (*models.TenantUsage, error) {
	statsKey := fmt.Sprintf("capture:stats:%s", host)
	fields, err := c.redis.HGetAll(ctx, statsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read capture stats: %w", err)
	}

	usage := &models.TenantUsage{}

	if v, ok := fields["total_events"]; ok {
		usage.TotalEvents, _ = strconv.ParseInt(v, 10, 64)
	}
	if v, ok := fields["last_captured_at"]; ok {
		if unix, err := strconv.ParseInt(v, 10, 64); err == nil {
			t := time.Unix(unix, 0).UTC()
			usage.LastCapturedAt = &t
		}
	}
	usage.LastSourceIP = fields["last_source_ip"]

	// Sum the trailing 24 hourly buckets for the rolling day count.
	now := time.Now()
	keys := make([]string, 0, 24)
	for i := 0; i < 24; i++ {
		hour := now.Add(-time.Duration(i) * time.Hour).Format("2006010215")
		keys = append(keys, fmt.Sprintf("capture:hourly:%s:%s", host, hour))
	}
	values, err := c.redis.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read hourly capture counts: %w", err)
	}
	for _, v := range values {
		if s, ok := v.(string); ok {
			if n, err := strconv.ParseInt(s, 10, 64); err == nil {
				usage.EventsLast24h += n
			}
		}
	}

	return usage, nil
}

// Close releases the Redis connection.
func (c *Client) Close() error {
	return c.redis.Close()
}
