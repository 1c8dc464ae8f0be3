package resilience

import (
	"context"
	"sync"
	"time"

	"github.com/customeros/outreachstack/interfaces"
	"github.com/customeros/outreachstack/internal/enum"
	er "github.com/customeros/outreachstack/internal/errors"
	"github.com/customeros/outreachstack/internal/logger"
	"github.com/customeros/outreachstack/internal/metrics"
	"github.com/customeros/outreachstack/internal/utils"
)

type circuitBreaker struct {
	scope       string
	threshold   int
	openTimeout time.Duration
	log         logger.Logger

	mu              sync.Mutex
	status          enum.CircuitStatus
	failureCount    int
	lastFailureTime time.Time
	probeInFlight   bool
}

func newCircuitBreaker(scope string, threshold int, openTimeout time.Duration, log logger.Logger) *circuitBreaker {
	return &circuitBreaker{
		scope:       scope,
		threshold:   threshold,
		openTimeout: openTimeout,
		log:         log,
		status:      enum.CircuitClosed,
	}
}

// transition must be called with the mutex held.
func (b *circuitBreaker) transition(to enum.CircuitStatus) {
	if b.status == to {
		return
	}
	b.status = to
	metrics.CircuitTransitions.WithLabelValues(b.scope, to.String()).Inc()
	b.log.Infof("circuit %s moved to %s", b.scope, to)
}

// admit decides whether the call may proceed. Half-open admits exactly
// one probe; concurrent callers are rejected until it resolves.
func (b *circuitBreaker) admit() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.status {
	case enum.CircuitOpen:
		retryAt := b.lastFailureTime.Add(b.openTimeout)
		if utils.Now().Before(retryAt) {
			return &er.CircuitOpenError{Scope: b.scope, RetryAt: retryAt}
		}
		b.transition(enum.CircuitHalfOpen)
		b.probeInFlight = true
	case enum.CircuitHalfOpen:
		if b.probeInFlight {
			return &er.CircuitOpenError{Scope: b.scope, RetryAt: utils.Now()}
		}
		b.probeInFlight = true
	}
	return nil
}

func (b *circuitBreaker) recordResult(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err != nil {
		b.lastFailureTime = utils.Now()
		if b.status == enum.CircuitHalfOpen {
			b.probeInFlight = false
			b.transition(enum.CircuitOpen)
			return
		}
		b.failureCount++
		if b.failureCount >= b.threshold {
			b.transition(enum.CircuitOpen)
		}
		return
	}

	if b.status == enum.CircuitHalfOpen {
		b.probeInFlight = false
		b.transition(enum.CircuitClosed)
	}
	b.failureCount = 0
}

func (b *circuitBreaker) Execute(ctx context.Context, op func(ctx context.Context) error) error {
	if err := b.admit(); err != nil {
		return err
	}

	err := op(ctx)
	b.recordResult(err)
	return err
}

type circuitBreakerRegistry struct {
	threshold   int
	openTimeout time.Duration
	log         logger.Logger

	mu       sync.Mutex
	breakers map[string]*circuitBreaker
}

func NewCircuitBreakerRegistry(log logger.Logger, threshold int, openTimeout time.Duration) interfaces.CircuitBreakerRegistry {
	return &circuitBreakerRegistry{
		threshold:   threshold,
		openTimeout: openTimeout,
		log:         log,
		breakers:    make(map[string]*circuitBreaker),
	}
}

func (r *circuitBreakerRegistry) For(scope string) interfaces.CircuitBreaker {
	r.mu.Lock()
	defer r.mu.Unlock()

	breaker, ok := r.breakers[scope]
	if !ok {
		breaker = newCircuitBreaker(scope, r.threshold, r.openTimeout, r.log)
		r.breakers[scope] = breaker
	}
	return breaker
}
