// Package redis publishes the latest closed window for dashboards.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/darshanbhalani/temperature-consumer/internal/config"
	"github.com/darshanbhalani/temperature-consumer/internal/models"
)

type setter interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// Snapshot keeps the most recent window report under a single key
type Snapshot struct {
	client setter
	key    string
	ttl    time.Duration
}

// NewClient connects to Redis and verifies connectivity
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr: cfg.Addr,
		DB:   cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}
	return client, nil
}

// NewSnapshot creates a snapshot reporter on client
func NewSnapshot(client *redis.Client, key string, ttl time.Duration) *Snapshot {
	return &Snapshot{client: client, key: key, ttl: ttl}
}

// Report replaces the stored snapshot with report
func (s *Snapshot) Report(ctx context.Context, report models.WindowReport) error {
	body, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode window snapshot: %w", err)
	}

	if err := s.client.Set(ctx, s.key, body, s.ttl).Err(); err != nil {
		return fmt.Errorf("store window snapshot: %w", err)
	}
	return nil
}
