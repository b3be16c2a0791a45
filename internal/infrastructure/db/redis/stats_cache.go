package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nannyslm/platform-api/internal/core/ports"
)

const (
	statsKey = "bank:stats"
	statsTTL = time.Minute
)

// StatsCache keeps the bank-account statistics aggregate warm for a short
// window so repeated dashboard loads do not re-run the aggregation.
type StatsCache struct {
	client *redis.Client
}

// NewStatsCache creates a StatsCache wrapping the given Redis client.
func NewStatsCache(client *redis.Client) *StatsCache {
	return &StatsCache{client: client}
}

// Get returns the cached aggregate, or (nil, nil) on a miss.
func (c *StatsCache) Get(ctx context.Context) (*ports.BankStats, error) {
	raw, err := c.client.Get(ctx, statsKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("stats cache get: %w", err)
	}

	var stats ports.BankStats
	if err := json.Unmarshal(raw, &stats); err != nil {
		return nil, fmt.Errorf("stats cache decode: %w", err)
	}
	return &stats, nil
}

// Set stores the aggregate (expires after statsTTL).
func (c *StatsCache) Set(ctx context.Context, stats *ports.BankStats) error {
	raw, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("stats cache encode: %w", err)
	}
	return c.client.Set(ctx, statsKey, raw, statsTTL).Err()
}
