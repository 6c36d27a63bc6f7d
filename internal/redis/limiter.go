package redis

import (
	"context"
	"fmt"
	"time"
)

// hitScript counts a call in the current window and returns the count
// together with the milliseconds left in the window.
const hitScript = `
local n = redis.call("INCR", KEYS[1])
if n == 1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return {n, redis.call("PTTL", KEYS[1])}
`

// RateLimiter allows limit calls per account in each fixed window.
type RateLimiter struct {
	rdb    Commander
	limit  int
	window time.Duration
}

// NewRateLimiter returns a limiter. A non-positive limit allows everything
// without contacting redis.
func NewRateLimiter(rdb Commander, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{rdb: rdb, limit: limit, window: window}
}

func rateKey(accountID string) string {
	return keyPrefix + "rate:" + accountID
}

// Allow records one call for accountID. When the window is exhausted it
// reports false and how long until the window resets.
func (r *RateLimiter) Allow(ctx context.Context, accountID string) (bool, time.Duration, error) {
	if r.limit <= 0 {
		return true, 0, nil
	}

	res, err := r.rdb.Eval(ctx, hitScript, []string{rateKey(accountID)}, r.window.Milliseconds()).Result()
	if err != nil {
		return false, 0, fmt.Errorf("redis rate limit script: %w", err)
	}

	values, ok := res.([]any)
	if !ok || len(values) != 2 {
		return false, 0, fmt.Errorf("unexpected rate limit reply %v", res)
	}
	count, ok1 := values[0].(int64)
	pttl, ok2 := values[1].(int64)
	if !ok1 || !ok2 {
		return false, 0, fmt.Errorf("unexpected rate limit reply %v", res)
	}

	if count <= int64(r.limit) {
		return true, 0, nil
	}
	wait := time.Duration(pttl) * time.Millisecond
	if wait <= 0 {
		wait = r.window
	}
	return false, wait, nil
}

// Wait blocks until a call for accountID is allowed or ctx is done.
func (r *RateLimiter) Wait(ctx context.Context, accountID string) error {
	for {
		allowed, wait, err := r.Allow(ctx, accountID)
		if err != nil {
			return err
		}
		if allowed {
			return nil
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
