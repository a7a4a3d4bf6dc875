// Package cache wraps an optional Redis client used for per-IP rate limiting
// and cache-aside storage of API responses. All methods are safe on a nil
// *Client, so the server runs unchanged when REDIS_ADDR is unset.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

type Client struct {
	rdb *redis.Client
}

func NewClient(addr string) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}

	return &Client{rdb: rdb}, nil
}

// IsRateLimited applies a fixed window of 30 requests per minute per IP.
// With no Redis configured it always allows the request.
func (c *Client) IsRateLimited(ctx context.Context, ip string) bool {
	if c == nil {
		return false
	}
	key := fmt.Sprintf("ratelimit:%s", ip)
	limitWindow := 60 * time.Second
	maxRequests := int64(30)

	pipe := c.rdb.Pipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, limitWindow)
	if _, err := pipe.Exec(ctx); err != nil {
		return false
	}
	return incr.Val() > maxRequests
}

func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	if c == nil {
		return nil, redis.Nil
	}
	return c.rdb.Get(ctx, key).Bytes()
}

func (c *Client) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if c == nil {
		return nil
	}
	return c.rdb.Set(ctx, key, data, ttl).Err()
}

func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	return c.rdb.Close()
}
