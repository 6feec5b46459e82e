package provider

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// RateLimiter is a token bucket that paces outbound LLM calls so a burst of
// manual refreshes cannot exhaust the upstream quota on its own.
type RateLimiter struct {
	mu             sync.Mutex
	clock          clockwork.Clock
	tokens         int
	maxTokens      int
	refillInterval time.Duration
	lastRefill     time.Time
}

// NewRateLimiter creates a limiter that allows maxTokens calls, regaining one per refillInterval.
func NewRateLimiter(clock clockwork.Clock, maxTokens int, refillInterval time.Duration) *RateLimiter {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if maxTokens <= 0 {
		maxTokens = 1
	}
	return &RateLimiter{
		clock:          clock,
		tokens:         maxTokens,
		maxTokens:      maxTokens,
		refillInterval: refillInterval,
		lastRefill:     clock.Now(),
	}
}

// NewPerMinuteLimiter spreads perMinute calls evenly over a minute.
func NewPerMinuteLimiter(clock clockwork.Clock, perMinute int) *RateLimiter {
	if perMinute <= 0 {
		perMinute = 1
	}
	return NewRateLimiter(clock, perMinute, time.Minute/time.Duration(perMinute))
}

// Wait blocks until a token is available or ctx is cancelled.
func (r *RateLimiter) Wait(ctx context.Context) error {
	for {
		r.mu.Lock()
		r.refill()
		if r.tokens > 0 {
			r.tokens--
			r.mu.Unlock()
			return nil
		}
		wait := r.lastRefill.Add(r.refillInterval).Sub(r.clock.Now())
		r.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-r.clock.After(wait):
		}
	}
}

func (r *RateLimiter) refill() {
	elapsed := r.clock.Since(r.lastRefill)
	newTokens := int(elapsed / r.refillInterval)
	if newTokens > 0 {
		r.tokens += newTokens
		if r.tokens > r.maxTokens {
			r.tokens = r.maxTokens
		}
		r.lastRefill = r.lastRefill.Add(time.Duration(newTokens) * r.refillInterval)
	}
}
