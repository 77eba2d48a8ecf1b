package limiter

import (
	"context"
	"fmt"
	"time"

	"order-api/internal/redisclient"

	"github.com/google/uuid"
)

// Redis enforces budgets with sorted-set rolling windows evaluated atomically
// by a Lua script, so concurrent requests for the same key never undercount.
type Redis struct {
	client *redisclient.Client
}

// NewRedis creates a Redis-backed limiter.
func NewRedis(client *redisclient.Client) *Redis {
	return &Redis{client: client}
}

// Allow evaluates all windows of the budget in one script invocation.
func (r *Redis) Allow(ctx context.Context, key string, budget Budget) (bool, error) {
	keys := make([]string, len(budget))
	limits := make([]int, len(budget))
	windows := make([]time.Duration, len(budget))

	for i, rate := range budget {
		keys[i] = fmt.Sprintf("ratelimit:%s:%d", key, int64(rate.Window.Seconds()))
		limits[i] = rate.Limit
		windows[i] = rate.Window
	}

	return r.client.AllowWindows(ctx, uuid.NewString(), keys, limits, windows)
}
