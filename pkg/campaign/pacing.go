package campaign

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pacer blocks between two consecutive sends.
type Pacer interface {
	Wait(ctx context.Context) error
	Interval() time.Duration
}

// FixedDelay waits the same duration every time. The wait ends early when ctx
// is canceled.
type FixedDelay time.Duration

func (d FixedDelay) Wait(ctx context.Context) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(time.Duration(d))
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d FixedDelay) Interval() time.Duration {
	return time.Duration(d)
}

// NewLimiter returns a token bucket admitting maxPerMinute sends per minute
// with no burst. It returns nil when maxPerMinute is not positive.
func NewLimiter(maxPerMinute int) *rate.Limiter {
	if maxPerMinute <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(maxPerMinute)), 1)
}
