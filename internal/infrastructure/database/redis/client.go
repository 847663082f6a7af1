// Package redis provides the Redis client and the embedding cache built on
// it.  Cache failures are advisory: callers fall through to the underlying
// provider rather than failing a request over a cache outage.
package redis

import (
	"context"

	goredis "github.com/redis/go-redis/v9"

	"github.com/openhaven/matchgrid/internal/config"
	"github.com/openhaven/matchgrid/internal/infrastructure/monitoring/logging"
	"github.com/openhaven/matchgrid/pkg/errors"
)

// Client wraps a go-redis client configured from the engine config.
type Client struct {
	rdb    *goredis.Client
	logger logging.Logger
}

// NewClient constructs a Client and verifies connectivity with a ping.
func NewClient(ctx context.Context, cfg config.RedisConfig, logger logging.Logger) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeCacheError, "redis ping failed")
	}

	return &Client{rdb: rdb, logger: logger.Named("redis")}, nil
}

// NewClientFromRedis wraps an existing go-redis client.  Used by tests that
// back the client with miniredis.
func NewClientFromRedis(rdb *goredis.Client, logger logging.Logger) *Client {
	return &Client{rdb: rdb, logger: logger.Named("redis")}
}

// Ping verifies connectivity.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return errors.Wrap(err, errors.CodeCacheError, "redis ping failed")
	}
	return nil
}

// Close releases the underlying connection pool.
func (c *Client) Close() error {
	return c.rdb.Close()
}
