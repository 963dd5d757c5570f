package batch

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Throttle paces successive rows. Runners call Wait between rows, never before the first.
type Throttle interface {
	Wait(ctx context.Context) error
}

// FixedDelay sleeps a constant duration.
type FixedDelay time.Duration

// Wait blocks for the delay or until ctx is done.
func (d FixedDelay) Wait(ctx context.Context) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(time.Duration(d))
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// RateThrottle allows a steady number of rows per interval.
type RateThrottle struct {
	limiter *rate.Limiter
}

// NewRateThrottle permits requests per interval with a burst of one.
func NewRateThrottle(requests int, interval time.Duration) *RateThrottle {
	if requests <= 0 || interval <= 0 {
		return &RateThrottle{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	return &RateThrottle{limiter: rate.NewLimiter(rate.Every(interval/time.Duration(requests)), 1)}
}

// Wait blocks until the limiter grants a token.
func (t *RateThrottle) Wait(ctx context.Context) error {
	return t.limiter.Wait(ctx)
}

// NoThrottle never waits.
type NoThrottle struct{}

// Wait returns immediately unless ctx is done.
func (NoThrottle) Wait(ctx context.Context) error { return ctx.Err() }
