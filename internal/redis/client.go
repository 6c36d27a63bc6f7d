// Package redis coordinates sync cycles across processes: a per-group lock so
// that one instance runs a group at a time, and a fixed-window rate limiter
// shared by every instance calling the list source for the same account.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/MKhiriev/go-list-sync/internal/config"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "listsync:"

// Commander is the part of the redis API used by this package.
type Commander interface {
	SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd
	Eval(ctx context.Context, script string, keys []string, args ...any) *redis.Cmd
}

// Client is a connected redis client.
type Client struct {
	*redis.Client
}

// NewClient connects to cfg.Address and verifies the connection with PING.
func NewClient(ctx context.Context, cfg config.Redis) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{Client: rdb}, nil
}

// Healthy reports whether redis answers PING.
func (c *Client) Healthy(ctx context.Context) error {
	return c.Ping(ctx).Err()
}
