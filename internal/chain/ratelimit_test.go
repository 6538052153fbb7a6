package chain_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/tokenmigrate/internal/chain"
)

func TestRateLimiter_Allow(t *testing.T) {
	rl := chain.NewRateLimiter(10, 10)

	for i := 0; i < 10; i++ {
		assert.True(t, rl.Allow("api.etherscan.io"), "request %d should fit the burst", i)
	}
	assert.False(t, rl.Allow("api.etherscan.io"), "burst is exhausted")
}

func TestRateLimiter_Wait(t *testing.T) {
	rl := chain.NewRateLimiter(100, 1)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	require.NoError(t, rl.Wait(ctx, "api.etherscan.io"))

	start := time.Now()
	require.NoError(t, rl.Wait(ctx, "api.etherscan.io"))
	assert.GreaterOrEqual(t, time.Since(start), 5*time.Millisecond)
}

func TestRateLimiter_SeparateHosts(t *testing.T) {
	rl := chain.NewRateLimiter(10, 2)

	assert.True(t, rl.Allow("api.etherscan.io"))
	assert.True(t, rl.Allow("api.etherscan.io"))
	assert.False(t, rl.Allow("api.etherscan.io"))

	assert.True(t, rl.Allow("api.coingecko.com"))
	assert.True(t, rl.Allow("api.coingecko.com"))
}

func TestRateLimiter_Disabled(t *testing.T) {
	rl := chain.NewRateLimiter(0, 0)

	for i := 0; i < 100; i++ {
		require.True(t, rl.Allow("anything"))
	}
	require.NoError(t, rl.Wait(context.Background(), "anything"))
}

func TestRateLimiter_ContextCancellation(t *testing.T) {
	rl := chain.NewRateLimiter(1, 1)
	require.NoError(t, rl.Wait(context.Background(), "host"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Error(t, rl.Wait(ctx, "host"))
}

func TestRateLimiter_Concurrent(t *testing.T) {
	rl := chain.NewRateLimiter(100, 100)

	var wg sync.WaitGroup
	results := make(chan bool, 200)
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- rl.Allow("host")
		}()
	}
	wg.Wait()
	close(results)

	count := 0
	for ok := range results {
		if ok {
			count++
		}
	}
	assert.GreaterOrEqual(t, count, 90)
	assert.LessOrEqual(t, count, 110)
}
