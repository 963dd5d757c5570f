package batch

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
)

func TestFixedDelay(t *testing.T) {
	start := time.Now()
	gt.NoError(t, FixedDelay(20*time.Millisecond).Wait(context.Background()))
	gt.Bool(t, time.Since(start) >= 20*time.Millisecond).True()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	gt.Error(t, FixedDelay(time.Hour).Wait(ctx)).Is(context.Canceled)
}

func TestRateThrottle(t *testing.T) {
	th := NewRateThrottle(50, time.Second)
	ctx := context.Background()
	start := time.Now()
	for i := 0; i < 3; i++ {
		gt.NoError(t, th.Wait(ctx))
	}
	// burst of one: the 2nd and 3rd waits are spaced by 20ms
	gt.Bool(t, time.Since(start) >= 35*time.Millisecond).True()

	gt.NoError(t, NewRateThrottle(0, 0).Wait(ctx))
}

func TestNoThrottle(t *testing.T) {
	gt.NoError(t, NoThrottle{}.Wait(context.Background()))
}
