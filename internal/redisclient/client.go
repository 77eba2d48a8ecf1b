package redisclient

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

//go:embed scripts/rate_window.lua
var rateWindowScript string

type Client struct {
	rdb          *redis.Client
	windowScript *redis.Script
}

// NewClient creates a new Redis client with the rate-window script loaded.
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{
		rdb:          rdb,
		windowScript: redis.NewScript(rateWindowScript),
	}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Ping checks connectivity, used by the health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// AllowWindows atomically evaluates a set of rolling windows for one caller.
// keys[i] names the sorted set backing window i, limits[i]/windows[i] its
// budget. One unit is consumed from every window only if all of them have
// remaining capacity; a rejected call consumes nothing.
func (c *Client) AllowWindows(ctx context.Context, member string, keys []string, limits []int, windows []time.Duration) (bool, error) {
	if len(keys) != len(limits) || len(keys) != len(windows) {
		return false, fmt.Errorf("mismatched window arguments: %d keys, %d limits, %d windows",
			len(keys), len(limits), len(windows))
	}

	args := make([]interface{}, 0, 2+2*len(keys))
	args = append(args, time.Now().UnixMilli(), member)
	for i := range keys {
		args = append(args, limits[i], windows[i].Milliseconds())
	}

	result, err := c.windowScript.Run(ctx, c.rdb, keys, args...).Result()
	if err != nil {
		return false, fmt.Errorf("rate window script failed: %w", err)
	}

	allowed, ok := result.(int64)
	if !ok {
		return false, fmt.Errorf("unexpected script result type")
	}

	return allowed == 1, nil
}
