package websocket

import (
	"context"
	"math"
	"math/rand/v2"
	"time"
)

// Backoff spaces redial attempts of a Session. Zero fields fall back to the
// values of DefaultBackoff, except Jitter where zero means none.
type Backoff struct {
	// Min is the delay before the first redial.
	Min time.Duration
	// Max caps every delay, jitter excluded.
	Max time.Duration
	// Factor is the growth per attempt. Values up to 1 become 2.
	Factor float64
	// Jitter spreads each delay by plus or minus this fraction, at most 1.
	Jitter float64
}

// DefaultBackoff is used by sessions configured with a zero Backoff.
func DefaultBackoff() Backoff {
	return Backoff{
		Min:    250 * time.Millisecond,
		Max:    5 * time.Second,
		Factor: 2.0,
		Jitter: 0.2,
	}
}

// Delay returns the wait before redial attempt n, counting from 1.
func (b Backoff) Delay(n int) time.Duration {
	b = b.normalized()
	n = max(n, 1)

	wait := b.Max
	if grown := float64(b.Min) * math.Pow(b.Factor, float64(n-1)); grown < float64(b.Max) {
		wait = time.Duration(grown)
	}
	if b.Jitter == 0 {
		return wait
	}
	spread := float64(wait) * b.Jitter
	return wait + time.Duration(spread*(2*rand.Float64()-1))
}

// Wait sleeps for Delay(n) and reports false when ctx ends first.
func (b Backoff) Wait(ctx context.Context, n int) bool {
	wait := b.Delay(n)
	if wait <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func (b Backoff) normalized() Backoff {
	if b.Min <= 0 {
		b.Min = 100 * time.Millisecond
	}
	if b.Max <= 0 {
		b.Max = 5 * time.Second
	}
	b.Max = max(b.Max, b.Min)
	if b.Factor <= 1 {
		b.Factor = 2
	}
	b.Jitter = min(max(b.Jitter, 0), 1)
	return b
}
