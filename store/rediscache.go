package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/seo-insight/backend/config"
	"github.com/seo-insight/backend/logging"
)

// RedisCache is a read-through cache in front of the Postgres memoization
// lookup. Purely an optimization: every miss falls through to the database.
type RedisCache struct {
	log *logging.Logger
	rdb *goredis.Client
	ttl time.Duration
}

// NewRedisCache connects to REDIS_ADDR and verifies the connection. Entry
// lifetime comes from REDIS_ANALYSIS_TTL_MINUTES (default 12 hours).
func NewRedisCache(log *logging.Logger) (*RedisCache, error) {
	addr := config.Get("REDIS_ADDR", "")
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    config.Get("REDIS_PASSWORD", ""),
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisCache{
		log: log.With("service", "RedisCache"),
		rdb: rdb,
		ttl: time.Duration(config.Int("REDIS_ANALYSIS_TTL_MINUTES", 720)) * time.Minute,
	}, nil
}

func cacheKey(contentHash string) string {
	return "analysis:" + contentHash
}

// Get returns the cached payload for the hash, or nil on a miss.
func (c *RedisCache) Get(ctx context.Context, contentHash string) ([]byte, error) {
	raw, err := c.rdb.Get(ctx, cacheKey(contentHash)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return raw, nil
}

// Set stores the payload under the hash with the configured TTL.
func (c *RedisCache) Set(ctx context.Context, contentHash string, payload []byte) error {
	return c.rdb.Set(ctx, cacheKey(contentHash), payload, c.ttl).Err()
}

func (c *RedisCache) Close() error {
	return c.rdb.Close()
}
