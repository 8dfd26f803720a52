// Package redis owns the shared Redis client used by the settings store.
package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"anchorage/internal/platform/config"
)

// Client wraps the go-redis client so callers get a connection that has
// already been pinged and sized per configuration.
type Client struct {
	*redis.Client
}

// New connects to the Redis instance named by cfg.URL. The connection is
// verified with a ping before it is handed out; a store backend that cannot
// reach Redis should fail at startup, not on the first enumeration.
func New(cfg config.RedisConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("redis URL is required")
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns
	opts.DialTimeout = cfg.DialTimeout
	opts.ReadTimeout = cfg.ReadTimeout
	opts.WriteTimeout = cfg.WriteTimeout

	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &Client{Client: client}, nil
}

// Health reports whether the connection still answers, for readiness probes.
func (c *Client) Health(ctx context.Context) error {
	return c.Ping(ctx).Err()
}
