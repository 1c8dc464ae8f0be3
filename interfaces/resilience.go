package interfaces

import (
	"context"
	"time"

	"github.com/customeros/outreachstack/dto"
)

// RateLimiter enforces fixed-window limits per (provider, endpoint)
// scope. An unconfigured scope fails open: newly added providers keep
// sending until a limit is registered. This favors availability over
// strict safety and is an accepted risk.
type RateLimiter interface {
	// ConfigureScope registers the fixed-window limit for a scope.
	// Re-registering replaces the limit; the active window is kept.
	ConfigureScope(scopeKey string, limit int, window time.Duration)
	Check(ctx context.Context, scopeKey string) (dto.RateLimitStatus, error)
	// Increment is only valid after a successful Check. Callers racing
	// on the same scope must use CheckAndIncrement instead.
	Increment(ctx context.Context, scopeKey string) error
	// CheckAndIncrement performs check-then-increment atomically at the
	// scope of the key.
	CheckAndIncrement(ctx context.Context, scopeKey string) (dto.RateLimitStatus, error)
}

// RetryConfig controls the retry executor's backoff behavior.
type RetryConfig struct {
	MaxRetries           int
	InitialDelay         time.Duration
	MaxDelay             time.Duration
	BackoffMultiplier    float64
	RetryableStatusCodes []int
}

// RetryExecutor retries classified-transient failures with
// multiplicative backoff, honoring server retry-after hints.
type RetryExecutor interface {
	Execute(ctx context.Context, operation string, op func(ctx context.Context) error, cfg RetryConfig) error
}

// CircuitBreaker guards one provider or sending identity. While open,
// calls fail immediately with a CircuitOpenError.
type CircuitBreaker interface {
	Execute(ctx context.Context, op func(ctx context.Context) error) error
}

// CircuitBreakerRegistry hands out one breaker per scope.
type CircuitBreakerRegistry interface {
	For(scope string) CircuitBreaker
}
