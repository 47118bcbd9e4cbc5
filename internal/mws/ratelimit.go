package mws

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// ErrHourlyLimitReached is returned when the hourly request quota is spent.
var ErrHourlyLimitReached = errors.New("hourly request quota reached")

const quotaWindow = time.Hour

// RateLimiter mirrors the service's throttling model client-side: a token
// bucket refilled at the restore rate, plus a rolling one-hour request quota.
// The quota window starts with the first call and resets an hour later.
type RateLimiter struct {
	limiter     *rate.Limiter
	hourly      atomic.Int64
	maxHourly   int64
	windowStart time.Time
	resetAt     time.Time
	mu          sync.Mutex
	nowFunc     func() time.Time
}

// RateLimiterOption configures the RateLimiter.
type RateLimiterOption func(*RateLimiter)

// WithRateLimiterNowFunc overrides the time function for testing.
func WithRateLimiterNowFunc(f func() time.Time) RateLimiterOption {
	return func(r *RateLimiter) {
		r.nowFunc = f
	}
}

// NewRateLimiter creates a limiter restoring perSecond tokens with the given
// burst (the service's "maximum request quota") and an hourly cap. A
// maxHourly of zero disables the hourly cap.
func NewRateLimiter(
	perSecond float64,
	burst int,
	maxHourly int64,
	opts ...RateLimiterOption,
) *RateLimiter {
	r := &RateLimiter{
		limiter:   rate.NewLimiter(rate.Limit(perSecond), burst),
		maxHourly: maxHourly,
		nowFunc:   time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	now := r.nowFunc()
	r.windowStart = now
	r.resetAt = now.Add(quotaWindow)
	return r
}

// Wait blocks until a token is available or ctx is done. It fails fast with
// ErrHourlyLimitReached once the hourly quota is spent. The quota slot is
// reserved before waiting on the bucket and handed back if the wait fails, so
// concurrent callers never exceed the cap.
func (r *RateLimiter) Wait(ctx context.Context) error {
	if err := r.reserve(); err != nil {
		return err
	}

	if err := r.limiter.Wait(ctx); err != nil {
		r.hourly.Add(-1)
		return fmt.Errorf("rate limiter wait: %w", err)
	}
	return nil
}

// reserve rolls the window if it expired and takes one slot of the hourly
// quota.
func (r *RateLimiter) reserve() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.resetIfExpired()

	n := r.hourly.Load()
	if r.maxHourly > 0 && n >= r.maxHourly {
		return fmt.Errorf("%w (%d/%d)", ErrHourlyLimitReached, n, r.maxHourly)
	}
	r.hourly.Add(1)
	return nil
}

// HourlyCount returns the number of calls made in the current window.
func (r *RateLimiter) HourlyCount() int64 {
	return r.hourly.Load()
}

// MaxHourly returns the configured hourly cap.
func (r *RateLimiter) MaxHourly() int64 {
	return r.maxHourly
}

// Remaining returns the calls left in the current window. Unlimited limiters
// report -1.
func (r *RateLimiter) Remaining() int64 {
	if r.maxHourly <= 0 {
		return -1
	}
	return max(r.maxHourly-r.hourly.Load(), 0)
}

// ResetAt returns when the current window expires.
func (r *RateLimiter) ResetAt() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.resetAt
}

// resetIfExpired must be called with mu held.
func (r *RateLimiter) resetIfExpired() {
	now := r.nowFunc()
	if now.After(r.resetAt) {
		r.hourly.Store(0)
		r.windowStart = now
		r.resetAt = now.Add(quotaWindow)
	}
}
