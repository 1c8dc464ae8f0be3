package resilience

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	er "github.com/customeros/outreachstack/internal/errors"
	"github.com/customeros/outreachstack/internal/logger"
)

func getLogger() logger.Logger {
	appLogger := logger.NewAppLogger(&logger.Config{
		DevMode: true,
	})
	appLogger.InitLogger()
	return appLogger
}

func TestRateLimiter_UnconfiguredScopeFailsOpen(t *testing.T) {
	// Arrange
	limiter := NewRateLimiter(getLogger(), NewInMemoryWindowStore())

	// Act
	status, err := limiter.Check(context.Background(), "unknown-provider:send")

	// Assert
	require.NoError(t, err)
	assert.True(t, status.Allowed)
}

func TestRateLimiter_DeniesAfterLimitSpent(t *testing.T) {
	// Arrange
	limiter := NewRateLimiter(getLogger(), NewInMemoryWindowStore())
	limiter.ConfigureScope("provider:send", 100, 10*time.Second)
	ctx := context.Background()

	// Act
	for i := 0; i < 100; i++ {
		status, err := limiter.CheckAndIncrement(ctx, "provider:send")
		require.NoError(t, err)
		require.True(t, status.Allowed)
	}
	status, err := limiter.CheckAndIncrement(ctx, "provider:send")

	// Assert
	assert.False(t, status.Allowed)
	assert.Greater(t, status.RetryAfterSeconds, 0)
	assert.True(t, er.IsRateLimited(err))
}

func TestRateLimiter_CheckDoesNotConsume(t *testing.T) {
	// Arrange
	limiter := NewRateLimiter(getLogger(), NewInMemoryWindowStore())
	limiter.ConfigureScope("provider:send", 2, time.Minute)
	ctx := context.Background()

	// Act
	first, err1 := limiter.Check(ctx, "provider:send")
	second, err2 := limiter.Check(ctx, "provider:send")

	// Assert
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, 2, first.Remaining)
	assert.Equal(t, 2, second.Remaining)
}

func TestRateLimiter_IncrementAfterCheck(t *testing.T) {
	// Arrange
	limiter := NewRateLimiter(getLogger(), NewInMemoryWindowStore())
	limiter.ConfigureScope("provider:send", 2, time.Minute)
	ctx := context.Background()

	// Act
	require.NoError(t, limiter.Increment(ctx, "provider:send"))
	require.NoError(t, limiter.Increment(ctx, "provider:send"))
	status, err := limiter.Check(ctx, "provider:send")

	// Assert
	require.NoError(t, err)
	assert.False(t, status.Allowed)
	assert.Equal(t, 0, status.Remaining)
}

func TestRateLimiter_WindowExpiryReplacesWindow(t *testing.T) {
	// Arrange
	limiter := NewRateLimiter(getLogger(), NewInMemoryWindowStore())
	limiter.ConfigureScope("provider:send", 1, 20*time.Millisecond)
	ctx := context.Background()

	// Act
	_, err := limiter.CheckAndIncrement(ctx, "provider:send")
	require.NoError(t, err)
	_, denied := limiter.CheckAndIncrement(ctx, "provider:send")
	time.Sleep(30 * time.Millisecond)
	status, err := limiter.CheckAndIncrement(ctx, "provider:send")

	// Assert
	assert.True(t, er.IsRateLimited(denied))
	require.NoError(t, err)
	assert.True(t, status.Allowed)
}

func TestRateLimiter_ConcurrentCheckAndIncrementNeverOversubscribes(t *testing.T) {
	// Arrange
	limiter := NewRateLimiter(getLogger(), NewInMemoryWindowStore())
	limiter.ConfigureScope("provider:send", 50, time.Minute)
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	granted := 0

	// Act
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			status, _ := limiter.CheckAndIncrement(ctx, "provider:send")
			if status.Allowed {
				mu.Lock()
				granted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	// Assert
	assert.Equal(t, 50, granted)
}
