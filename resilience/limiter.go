package resilience

import (
	"context"
	"sync"
	"time"
)

// Limiter is a token bucket: up to burst calls pass immediately, after
// which calls are spaced at rate per second.
type Limiter struct {
	rate  float64
	burst int

	mu     sync.Mutex
	tokens float64
	last   time.Time
	now    func() time.Time
}

// NewLimiter returns a full bucket. A non-positive burst becomes the rate
// rounded down, and at least 1.
func NewLimiter(rate float64, burst int) *Limiter {
	if burst <= 0 {
		burst = max(int(rate), 1)
	}
	l := &Limiter{rate: rate, burst: burst, now: time.Now}
	l.tokens = float64(burst)
	l.last = l.now()
	return l
}

// Allow takes a token if one is available.
func (l *Limiter) Allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.refill()
	if l.tokens >= 1 {
		l.tokens--
		return true
	}
	return false
}

// Wait takes a token, blocking until one is due or ctx is done. A canceled
// wait still consumes its reservation.
func (l *Limiter) Wait(ctx context.Context) error {
	d := l.reserve()
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Rate returns the sustained rate in calls per second.
func (l *Limiter) Rate() float64 { return l.rate }

// Burst returns the bucket size.
func (l *Limiter) Burst() int { return l.burst }

// reserve takes a token, letting the balance go negative, and returns how
// long the caller must wait for it.
func (l *Limiter) reserve() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.refill()
	l.tokens--
	if l.tokens >= 0 {
		return 0
	}
	return time.Duration(-l.tokens / l.rate * float64(time.Second))
}

func (l *Limiter) refill() {
	now := l.now()
	l.tokens += now.Sub(l.last).Seconds() * l.rate
	l.last = now
	if l.tokens > float64(l.burst) {
		l.tokens = float64(l.burst)
	}
}
