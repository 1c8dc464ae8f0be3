package resilience

import (
	"context"
	"net"
	"strings"
	"syscall"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/customeros/outreachstack/interfaces"
	er "github.com/customeros/outreachstack/internal/errors"
	"github.com/customeros/outreachstack/internal/logger"
	"github.com/customeros/outreachstack/internal/metrics"
	"github.com/customeros/outreachstack/internal/tracing"
)

type retryExecutorService struct {
	log logger.Logger
}

func NewRetryExecutor(log logger.Logger) interfaces.RetryExecutor {
	return &retryExecutorService{log: log}
}

// Execute runs op, retrying transient failures with multiplicative
// backoff capped at MaxDelay. A server-provided retry-after hint takes
// precedence over the computed backoff. Exhausting retries returns the
// last error.
func (s *retryExecutorService) Execute(ctx context.Context, operation string, op func(ctx context.Context) error, cfg interfaces.RetryConfig) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "RetryExecutor.Execute")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.LogKV("operation", operation)

	delay := cfg.InitialDelay
	var lastErr error

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			wait := delay
			if hint, ok := retryAfterHint(lastErr); ok {
				wait = hint
			}

			metrics.RetryAttempts.WithLabelValues(operation).Inc()
			s.log.Warnf("retrying %s, attempt %d of %d after %s: %v", operation, attempt, cfg.MaxRetries, wait, lastErr)

			if err := sleepContext(ctx, wait); err != nil {
				tracing.TraceErr(span, err)
				return err
			}

			delay = time.Duration(float64(delay) * cfg.BackoffMultiplier)
			if cfg.MaxDelay > 0 && delay > cfg.MaxDelay {
				delay = cfg.MaxDelay
			}
		}

		err := op(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if !isTransient(err, cfg.RetryableStatusCodes) {
			tracing.TraceErr(span, err)
			return err
		}
	}

	tracing.TraceErr(span, errors.Wrapf(lastErr, "retries exhausted for %s", operation))
	return lastErr
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func retryAfterHint(err error) (time.Duration, bool) {
	var retryAfter *er.RetryAfterError
	if errors.As(err, &retryAfter) && retryAfter.After > 0 {
		return retryAfter.After, true
	}
	return 0, false
}

// isTransient classifies a failure as retryable: a TransientError with
// a listed status code, a retry-after hint, or a connection-level
// fault (reset, timeout).
func isTransient(err error, retryableStatusCodes []int) bool {
	var retryAfter *er.RetryAfterError
	if errors.As(err, &retryAfter) {
		return true
	}

	var transient *er.TransientError
	if errors.As(err, &transient) {
		if transient.StatusCode == 0 {
			return true
		}
		for _, code := range retryableStatusCodes {
			if transient.StatusCode == code {
				return true
			}
		}
		return false
	}

	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := err.Error()
	return strings.Contains(msg, "connection reset") || strings.Contains(msg, "i/o timeout")
}
