// Package ratelimit provides token bucket and sliding window limiters.
// The webhook handler uses a global Limiter to pace LINE API calls, and
// the bot uses a KeyedLimiter to cap searches per chat.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter is a token bucket. It is safe for concurrent use.
//
// Tokens refill continuously at refillRate per second up to maxTokens;
// each request takes one.
type Limiter struct {
	mu         sync.Mutex
	tokens     float64
	maxTokens  float64
	refillRate float64
	lastRefill time.Time
	now        func() time.Time
}

// New creates a full bucket holding maxTokens that refills at refillRate
// tokens per second.
//
//	// LINE allows 2,000 requests per second per channel; stay well below
//	limiter := ratelimit.New(100, 80)
func New(maxTokens, refillRate float64) *Limiter {
	return newLimiter(maxTokens, refillRate, time.Now)
}

func newLimiter(maxTokens, refillRate float64, now func() time.Time) *Limiter {
	return &Limiter{
		tokens:     maxTokens,
		maxTokens:  maxTokens,
		refillRate: refillRate,
		lastRefill: now(),
		now:        now,
	}
}

// refill must be called with mu held.
func (l *Limiter) refill() {
	now := l.now()
	l.tokens = min(l.maxTokens, l.tokens+now.Sub(l.lastRefill).Seconds()*l.refillRate)
	l.lastRefill = now
}

// Allow takes a token if one is available. It never blocks; best-effort
// calls use it to skip work instead of queueing behind Wait.
func (l *Limiter) Allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.refill()
	if l.tokens < 1 {
		return false
	}
	l.tokens--
	return true
}

// check reports whether a token is available without taking it.
// Callers pairing check with consume must serialize the pair themselves.
func (l *Limiter) check() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.refill()
	return l.tokens >= 1
}

func (l *Limiter) consume() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.refill()
	if l.tokens >= 1 {
		l.tokens--
	}
}

// Wait blocks until a token is taken or ctx is done.
// It reports whether it had to wait at all.
func (l *Limiter) Wait(ctx context.Context) (waited bool, err error) {
	for {
		l.mu.Lock()
		l.refill()
		if l.tokens >= 1 {
			l.tokens--
			l.mu.Unlock()
			return waited, nil
		}
		if l.refillRate <= 0 {
			l.mu.Unlock()
			<-ctx.Done()
			return true, ctx.Err()
		}
		delay := time.Duration((1 - l.tokens) / l.refillRate * float64(time.Second))
		l.mu.Unlock()

		waited = true
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return true, ctx.Err()
		case <-timer.C:
		}
	}
}

// IsFull reports whether the bucket has refilled completely, meaning the
// key it belongs to has been idle.
func (l *Limiter) IsFull() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.refill()
	return l.tokens >= l.maxTokens
}
