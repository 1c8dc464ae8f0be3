package resilience

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/opentracing/opentracing-go"
	tracingLog "github.com/opentracing/opentracing-go/log"

	"github.com/customeros/outreachstack/dto"
	"github.com/customeros/outreachstack/interfaces"
	er "github.com/customeros/outreachstack/internal/errors"
	"github.com/customeros/outreachstack/internal/logger"
	"github.com/customeros/outreachstack/internal/metrics"
	"github.com/customeros/outreachstack/internal/tracing"
	"github.com/customeros/outreachstack/internal/utils"
)

type scopeLimit struct {
	limit  int
	window time.Duration
}

type rateLimiterService struct {
	log   logger.Logger
	store WindowStore

	mu     sync.RWMutex
	limits map[string]scopeLimit
}

func NewRateLimiter(log logger.Logger, store WindowStore) interfaces.RateLimiter {
	return &rateLimiterService{
		log:    log,
		store:  store,
		limits: make(map[string]scopeLimit),
	}
}

func (s *rateLimiterService) ConfigureScope(scopeKey string, limit int, window time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.limits[scopeKey] = scopeLimit{limit: limit, window: window}
}

func (s *rateLimiterService) scopeConfig(scopeKey string) (scopeLimit, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cfg, ok := s.limits[scopeKey]
	return cfg, ok
}

// openStatus is returned for unconfigured scopes. Fail-open keeps new
// providers sending until a limit is registered; accepted risk.
func openStatus() dto.RateLimitStatus {
	return dto.RateLimitStatus{
		Allowed:   true,
		Remaining: math.MaxInt32,
		ResetAt:   utils.Now(),
	}
}

func statusFromWindow(state WindowState, limit int) dto.RateLimitStatus {
	status := dto.RateLimitStatus{
		Allowed:   state.Count < limit,
		Remaining: limit - state.Count,
		ResetAt:   state.WindowEnd,
	}
	if status.Remaining < 0 {
		status.Remaining = 0
	}
	if !status.Allowed {
		retryAfter := int(math.Ceil(time.Until(state.WindowEnd).Seconds()))
		if retryAfter < 1 {
			retryAfter = 1
		}
		status.RetryAfterSeconds = retryAfter
	}
	return status
}

func (s *rateLimiterService) Check(ctx context.Context, scopeKey string) (dto.RateLimitStatus, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "RateLimiter.Check")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.LogKV("scopeKey", scopeKey)

	cfg, ok := s.scopeConfig(scopeKey)
	if !ok {
		return openStatus(), nil
	}

	state, err := s.store.Current(ctx, scopeKey, cfg.window)
	if err != nil {
		tracing.TraceErr(span, err)
		return dto.RateLimitStatus{}, err
	}

	status := statusFromWindow(state, cfg.limit)
	span.LogFields(tracingLog.Bool("result.allowed", status.Allowed))
	return status, nil
}

func (s *rateLimiterService) Increment(ctx context.Context, scopeKey string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "RateLimiter.Increment")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.LogKV("scopeKey", scopeKey)

	cfg, ok := s.scopeConfig(scopeKey)
	if !ok {
		return nil
	}

	_, err := s.store.Add(ctx, scopeKey, cfg.window)
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}
	return nil
}

// CheckAndIncrement reserves one slot atomically. A denied scope
// returns a RateLimitError carrying the retry-after hint.
func (s *rateLimiterService) CheckAndIncrement(ctx context.Context, scopeKey string) (dto.RateLimitStatus, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "RateLimiter.CheckAndIncrement")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.LogKV("scopeKey", scopeKey)

	cfg, ok := s.scopeConfig(scopeKey)
	if !ok {
		return openStatus(), nil
	}

	state, applied, err := s.store.AddIfBelow(ctx, scopeKey, cfg.limit, cfg.window)
	if err != nil {
		tracing.TraceErr(span, err)
		return dto.RateLimitStatus{}, err
	}

	if !applied {
		status := statusFromWindow(state, cfg.limit)
		status.Allowed = false
		metrics.RateLimitDenials.WithLabelValues(scopeKey).Inc()
		s.log.Warnf("rate limit exceeded for scope %s, retry after %ds", scopeKey, status.RetryAfterSeconds)
		return status, &er.RateLimitError{
			Scope:      scopeKey,
			RetryAfter: time.Duration(status.RetryAfterSeconds) * time.Second,
		}
	}

	remaining := cfg.limit - state.Count
	if remaining < 0 {
		remaining = 0
	}
	return dto.RateLimitStatus{
		Allowed:   true,
		Remaining: remaining,
		ResetAt:   state.WindowEnd,
	}, nil
}
