// Package retry re-runs operations that failed transiently, with exponential
// backoff between attempts.
package retry

import (
	"context"
	"time"

	"order-api/internal/apperrors"
	"order-api/internal/util"

	"github.com/sethvargo/go-retry"
)

const (
	maxAttempts = 3
	baseDelay   = time.Second
)

// Do runs op up to three times, sleeping 1s then 2s between attempts. Only
// failures classified retryable by apperrors are replayed; deterministic
// failures propagate on the first attempt. After the last attempt the final
// failure is returned unchanged.
func Do(ctx context.Context, op func(context.Context) error) error {
	return do(ctx, baseDelay, op)
}

func do(ctx context.Context, base time.Duration, op func(context.Context) error) error {
	backoff := retry.WithMaxRetries(maxAttempts-1, retry.NewExponential(base))

	attempt := 0
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		if attempt > 1 {
			util.RetryAttemptsTotal.Inc()
		}

		err := op(ctx)
		if err == nil {
			return nil
		}
		if apperrors.IsRetryable(err) {
			return retry.RetryableError(err)
		}
		return err
	})
}
