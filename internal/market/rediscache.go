package market

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache stores readings in Redis with server-side expiry, so the 30s
// window is shared across replicas. Readings round-trip through JSON; the
// IsLive flag and source sentinel survive the codec unchanged.
type RedisCache struct {
	rdb    *redis.Client
	logger *slog.Logger
}

// NewRedisCache connects to Redis and verifies the connection with a ping.
func NewRedisCache(redisURL, password string, logger *slog.Logger) (*RedisCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if password != "" {
		opts.Password = password
	}
	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &RedisCache{rdb: rdb, logger: logger}, nil
}

func (c *RedisCache) Close() error { return c.rdb.Close() }

func (c *RedisCache) Ping(ctx context.Context) error { return c.rdb.Ping(ctx).Err() }

func key(kind Kind) string { return "reading:" + string(kind) }

func (c *RedisCache) Get(ctx context.Context, kind Kind) (*Reading, bool) {
	raw, err := c.rdb.Get(ctx, key(kind)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("redis get failed", "kind", kind, "error", err)
		}
		return nil, false
	}
	var r Reading
	if err := json.Unmarshal(raw, &r); err != nil {
		c.logger.Warn("corrupt cached reading", "kind", kind, "error", err)
		return nil, false
	}
	return &r, true
}

func (c *RedisCache) Set(ctx context.Context, kind Kind, r *Reading, ttl time.Duration) {
	raw, err := json.Marshal(r)
	if err != nil {
		c.logger.Warn("marshal reading failed", "kind", kind, "error", err)
		return
	}
	if err := c.rdb.Set(ctx, key(kind), raw, ttl).Err(); err != nil {
		c.logger.Warn("redis set failed", "kind", kind, "error", err)
	}
}
