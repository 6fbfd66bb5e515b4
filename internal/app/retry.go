package app

import (
	"context"
	crand "crypto/rand"
	"time"
)

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// backoff returns an exponential delay with up to +50% jitter.
// i = retry attempt (0,1,2,...): 20ms, 40ms, 80ms...
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 20 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	j := time.Duration(0.5 * f * float64(base))
	return base + j
}
