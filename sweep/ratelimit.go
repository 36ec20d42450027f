// Copyright 2025 The Pantry Pirate Radio Authors
//
// SPDX-License-Identifier: Apache-2.0
package sweep

import (
	"context"
	"math"
	"sync"
	"time"
)

// TokenBucket is a blocking rate limiter shared by every concurrent cell
// search. It admits requestsPerMinute calls, refilling continuously.
type TokenBucket struct {
	mu         sync.Mutex
	capacity   float64
	tokens     float64
	refillRate float64 // tokens per second
	last       time.Time
}

// NewTokenBucket creates a full bucket admitting requestsPerMinute calls.
func NewTokenBucket(requestsPerMinute int) *TokenBucket {
	n := float64(requestsPerMinute)

	return &TokenBucket{
		capacity:   n,
		tokens:     n,
		refillRate: n / 60,
		last:       time.Now(),
	}
}

// must hold mu.
func (b *TokenBucket) refill() {
	now := time.Now()
	b.tokens = math.Min(b.capacity, b.tokens+now.Sub(b.last).Seconds()*b.refillRate)
	b.last = now
}

// Allow consumes a token if one is available, without blocking.
func (b *TokenBucket) Allow() bool {
	if b == nil {
		return true
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.refill()

	if b.tokens < 1 {
		return false
	}

	b.tokens--

	return true
}

// Wait blocks until a token is available or the context is done. A nil
// bucket never blocks.
func (b *TokenBucket) Wait(ctx context.Context) error {
	if b == nil {
		return nil
	}

	for {
		b.mu.Lock()
		b.refill()

		if b.tokens >= 1 {
			b.tokens--
			b.mu.Unlock()

			return nil
		}

		wait := time.Duration((1 - b.tokens) / b.refillRate * float64(time.Second))
		b.mu.Unlock()

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()

			return ctx.Err()
		case <-timer.C:
		}
	}
}
