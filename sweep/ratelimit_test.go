// Copyright 2025 The Pantry Pirate Radio Authors
//
// SPDX-License-Identifier: Apache-2.0
package sweep

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenBucket_AllowBudget(t *testing.T) {
	b := NewTokenBucket(3)

	for i := 0; i < 3; i++ {
		assert.True(t, b.Allow(), "call %d should be admitted", i)
	}

	assert.False(t, b.Allow(), "budget exhausted")
}

func TestTokenBucket_NilNeverBlocks(t *testing.T) {
	var b *TokenBucket

	assert.True(t, b.Allow())
	assert.NoError(t, b.Wait(context.Background()))
}

func TestTokenBucket_WaitHonorsCancellation(t *testing.T) {
	b := NewTokenBucket(1)
	require.True(t, b.Allow()) // drain the only token

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	assert.ErrorIs(t, b.Wait(ctx), context.DeadlineExceeded)
}

func TestTokenBucket_WaitRefills(t *testing.T) {
	b := NewTokenBucket(6000) // 100 tokens per second

	for b.Allow() {
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	start := time.Now()
	require.NoError(t, b.Wait(ctx))
	assert.Less(t, time.Since(start), time.Second)
}
